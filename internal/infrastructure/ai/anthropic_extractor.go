package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/application/ports"
	"github.com/jhoicas/orderflow-api/internal/domain"
)

// Verificar en tiempo de compilación que AnthropicExtractor implementa OrderExtractor.
var _ ports.OrderExtractor = (*AnthropicExtractor)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	extractionSystemPrompt = `Eres un asistente de captura de pedidos para una distribuidora B2B.
Dado el mensaje de un cliente (puede ser la transcripción de una nota de voz o un texto libre),
extrae los ítems que el cliente quiere pedir.

INSTRUCCIONES:
- Empareja los productos solicitados con ítems del catálogo proporcionado.
- Si el cliente usa nombres informales, empareja con el ítem del catálogo más cercano.
- Si un producto no se puede emparejar con ningún ítem del catálogo, usa sku "UNKNOWN" y conserva el nombre original.
- Extrae la cantidad de cada ítem. Si no es clara, asume 1.
- unit_price es el precio unitario que el cliente menciona; si no menciona precio, usa el del catálogo.

Devuelve ÚNICAMENTE un array JSON válido. Cada elemento debe tener exactamente estas claves:
  - "sku": string
  - "product_name": string
  - "quantity": entero positivo
  - "unit_price": número no negativo

Ejemplo de salida:
[
  {"sku": "WIDGET-001", "product_name": "Blue Widget", "quantity": 500, "unit_price": 12.50},
  {"sku": "GADGET-PRO", "product_name": "Gadget Pro", "quantity": 200, "unit_price": 45.00}
]

No incluyas explicaciones, bloques markdown ni claves adicionales. Solo el array JSON.`
)

// AnthropicExtractor adaptador que implementa OrderExtractor usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar de Go; no requiere el SDK oficial.
type AnthropicExtractor struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicExtractor construye el adaptador.
// model suele ser "claude-3-5-haiku-20241022".
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicExtractor(apiKey, model string) *AnthropicExtractor {
	return &AnthropicExtractor{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			// Timeout de red de 30 s; el use case impone además su propio context.WithTimeout.
			Timeout: 30 * time.Second,
		},
	}
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// rawExtractedItem forma intermedia del JSON del modelo, antes de la validación estricta.
type rawExtractedItem struct {
	SKU         *string          `json:"sku"`
	ProductName *string          `json:"product_name"`
	Quantity    *json.Number     `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// jsonArrayRe extrae el primer array JSON del texto aunque Claude lo envuelva en markdown.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// ── Implementación del puerto ─────────────────────────────────────────────────

// Extract envía la transcripción y el catálogo a Claude y devuelve las líneas de
// pedido ya validadas. Cero líneas es una salida legítima; una respuesta que no
// cumpla el esquema retorna domain.ErrExtractionMalformed sin intentar adivinar.
func (e *AnthropicExtractor) Extract(
	ctx context.Context,
	transcript string,
	catalog []ports.CatalogItem,
) ([]ports.ExtractedItem, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}

	userContent := fmt.Sprintf(
		"Catálogo actual (SKU | Producto | Precio unitario):\n%s\n\nMensaje del cliente:\n%s",
		formatCatalog(catalog), transcript,
	)

	payload := anthropicRequest{
		Model:     e.model,
		MaxTokens: 2048,
		System:    extractionSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userContent},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	// Manejar errores HTTP de la API de Anthropic
	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}

	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}

	return parseExtraction(anthResp.Content[0].Text)
}

// formatCatalog serializa el catálogo como líneas "SKU | Nombre | Precio" para el prompt.
func formatCatalog(catalog []ports.CatalogItem) string {
	if len(catalog) == 0 {
		return "(catálogo vacío)"
	}
	var sb strings.Builder
	for _, it := range catalog {
		fmt.Fprintf(&sb, "%s | %s | %s\n", it.SKU, it.Name, it.UnitPrice.StringFixed(2))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseExtraction parsea y valida estrictamente el array JSON del modelo.
// Cualquier violación del esquema envuelve domain.ErrExtractionMalformed.
func parseExtraction(rawText string) ([]ports.ExtractedItem, error) {
	cleanJSON := extractJSONArray(rawText)
	if cleanJSON == "" {
		return nil, fmt.Errorf("%w: no se encontró un array JSON en la respuesta del modelo", domain.ErrExtractionMalformed)
	}

	dec := json.NewDecoder(strings.NewReader(cleanJSON))
	dec.UseNumber()
	var raw []rawExtractedItem
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parsear array JSON: %v", domain.ErrExtractionMalformed, err)
	}

	items := make([]ports.ExtractedItem, 0, len(raw))
	for i, r := range raw {
		if r.SKU == nil || r.ProductName == nil || r.Quantity == nil || r.UnitPrice == nil {
			return nil, fmt.Errorf("%w: ítem %d con claves faltantes", domain.ErrExtractionMalformed, i)
		}
		qty, err := r.Quantity.Int64()
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("%w: ítem %d con quantity inválido (%s)", domain.ErrExtractionMalformed, i, r.Quantity.String())
		}
		if *r.SKU == "" || *r.ProductName == "" {
			return nil, fmt.Errorf("%w: ítem %d con sku o product_name vacío", domain.ErrExtractionMalformed, i)
		}
		if r.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: ítem %d con unit_price negativo", domain.ErrExtractionMalformed, i)
		}
		items = append(items, ports.ExtractedItem{
			SKU:         *r.SKU,
			ProductName: *r.ProductName,
			Quantity:    int(qty),
			UnitPrice:   *r.UnitPrice,
		})
	}
	return items, nil
}

// extractJSONArray extrae el primer array JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque [ … ].
func extractJSONArray(text string) string {
	// Eliminar bloques markdown ```json ... ``` o ``` ... ```
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// Quitar la línea de apertura (```json o ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		// Quitar el cierre ```
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	// Si el texto resultante ya empieza con '[', usarlo directamente
	if strings.HasPrefix(text, "[") {
		return text
	}

	// Fallback: regex para extraer el primer [...]
	match := jsonArrayRe.FindString(text)
	return strings.TrimSpace(match)
}
