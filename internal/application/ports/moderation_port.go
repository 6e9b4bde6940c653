package ports

import "context"

// Decisiones posibles del servicio de moderación.
const (
	DecisionAllow = "allow"
	DecisionFlag  = "flag"
	DecisionBlock = "block"
)

// SafetyVerdict veredicto del servicio de moderación sobre un texto.
type SafetyVerdict struct {
	Decision string // allow | flag | block
	Reason   string
}

// Unsafe indica si el veredicto amerita acción según la política.
func (v *SafetyVerdict) Unsafe() bool {
	return v.Decision == DecisionFlag || v.Decision == DecisionBlock
}

// ModerationService define el puerto de salida para verificación de contenido.
// Un error de transporte NO equivale a un veredicto: la política del
// orquestador decide si es fatal (strict) o solo un warning (log/off).
type ModerationService interface {
	Check(ctx context.Context, text string) (*SafetyVerdict, error)
}
