package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/orderflow-api/internal/application/ports"
)

// Verificar en tiempo de compilación que ElevenLabsTranscriber implementa Transcriber.
var _ ports.Transcriber = (*ElevenLabsTranscriber)(nil)

const (
	elevenLabsSTTURL = "https://api.elevenlabs.io/v1/speech-to-text"
	elevenLabsModel  = "scribe_v1"
)

// ElevenLabsTranscriber adaptador primario de transcripción de voz
// contra la API speech-to-text de ElevenLabs.
type ElevenLabsTranscriber struct {
	apiKey     string
	httpClient *http.Client
}

// NewElevenLabsTranscriber construye el adaptador.
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewElevenLabsTranscriber(apiKey string) *ElevenLabsTranscriber {
	return &ElevenLabsTranscriber{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 35 * time.Second,
		},
	}
}

// Name identifica el adaptador en logs y en la cadena de fallback.
func (t *ElevenLabsTranscriber) Name() string { return "elevenlabs" }

type elevenLabsSTTResponse struct {
	Text string `json:"text"`
}

// Transcribe envía el audio como multipart/form-data y devuelve el texto transcrito.
func (t *ElevenLabsTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("transcripción: ELEVENLABS_API_KEY no configurado")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("transcripción: crear form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("transcripción: escribir audio: %w", err)
	}
	if err := writer.WriteField("model_id", elevenLabsModel); err != nil {
		return "", fmt.Errorf("transcripción: escribir model_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("transcripción: cerrar multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, elevenLabsSTTURL, &buf)
	if err != nil {
		return "", fmt.Errorf("transcripción: crear HTTP request: %w", err)
	}
	req.Header.Set("xi-api-key", t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcripción: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("transcripción: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("transcripción: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcripción: ElevenLabs HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var sttResp elevenLabsSTTResponse
	if err := json.Unmarshal(rawBody, &sttResp); err != nil {
		return "", fmt.Errorf("transcripción: deserializar respuesta ElevenLabs: %w", err)
	}
	text := strings.TrimSpace(sttResp.Text)
	if text == "" {
		return "", fmt.Errorf("transcripción: ElevenLabs devolvió texto vacío")
	}
	return text, nil
}
