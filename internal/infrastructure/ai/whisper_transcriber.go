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

// Verificar en tiempo de compilación que WhisperTranscriber implementa Transcriber.
var _ ports.Transcriber = (*WhisperTranscriber)(nil)

const (
	whisperTranscriptionsURL = "https://api.openai.com/v1/audio/transcriptions"
	whisperModel             = "whisper-1"
)

// WhisperTranscriber adaptador de respaldo de transcripción contra la API
// de audio de OpenAI (Whisper). Se usa cuando el adaptador primario falla.
type WhisperTranscriber struct {
	apiKey     string
	httpClient *http.Client
}

// NewWhisperTranscriber construye el adaptador.
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 35 * time.Second,
		},
	}
}

// Name identifica el adaptador en logs y en la cadena de fallback.
func (t *WhisperTranscriber) Name() string { return "whisper" }

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe envía el audio como multipart/form-data y devuelve el texto transcrito.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("transcripción: OPENAI_API_KEY no configurado")
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
	if err := writer.WriteField("model", whisperModel); err != nil {
		return "", fmt.Errorf("transcripción: escribir model: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("transcripción: cerrar multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, whisperTranscriptionsURL, &buf)
	if err != nil {
		return "", fmt.Errorf("transcripción: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
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
		return "", fmt.Errorf("transcripción: Whisper HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var whResp whisperResponse
	if err := json.Unmarshal(rawBody, &whResp); err != nil {
		return "", fmt.Errorf("transcripción: deserializar respuesta Whisper: %w", err)
	}
	text := strings.TrimSpace(whResp.Text)
	if text == "" {
		return "", fmt.Errorf("transcripción: Whisper devolvió texto vacío")
	}
	return text, nil
}
