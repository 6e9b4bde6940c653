package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/orderflow-api/internal/application/ports"
)

// Verificar en tiempo de compilación que WhiteCircleModeration implementa ModerationService.
var _ ports.ModerationService = (*WhiteCircleModeration)(nil)

const whiteCircleChecksURL = "https://api.whitecircle.ai/v1/checks"

// WhiteCircleModeration adaptador del puerto de moderación contra la API
// REST de White Circle. Solo reporta el veredicto; la política (strict/log/off)
// vive en el orquestador.
type WhiteCircleModeration struct {
	apiKey     string
	httpClient *http.Client
}

// NewWhiteCircleModeration construye el adaptador.
func NewWhiteCircleModeration(apiKey string) *WhiteCircleModeration {
	return &WhiteCircleModeration{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type whiteCircleRequest struct {
	Text string `json:"text"`
}

type whiteCircleResponse struct {
	Decision string `json:"decision"` // allow | flag | block
	Reason   string `json:"reason"`
}

// Check envía el texto y devuelve el veredicto de la política de contenido.
// Un error aquí es de transporte, nunca un veredicto implícito.
func (m *WhiteCircleModeration) Check(ctx context.Context, text string) (*ports.SafetyVerdict, error) {
	if m.apiKey == "" {
		return nil, fmt.Errorf("moderación: WHITE_CIRCLE_API_KEY no configurado")
	}

	body, err := json.Marshal(whiteCircleRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("moderación: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, whiteCircleChecksURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("moderación: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("moderación: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("moderación: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("moderación: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderación: White Circle HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var wcResp whiteCircleResponse
	if err := json.Unmarshal(rawBody, &wcResp); err != nil {
		return nil, fmt.Errorf("moderación: deserializar respuesta White Circle: %w", err)
	}

	switch wcResp.Decision {
	case ports.DecisionAllow, ports.DecisionFlag, ports.DecisionBlock:
	default:
		return nil, fmt.Errorf("moderación: decisión desconocida %q", wcResp.Decision)
	}

	return &ports.SafetyVerdict{Decision: wcResp.Decision, Reason: wcResp.Reason}, nil
}
