package domain

import "errors"

// Errores de dominio (sin dependencias externas). Los handlers los mapean a
// códigos estables de ErrorResponse; ninguno se reintenta automáticamente.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Taxonomía del pipeline de pedidos.
	ErrTranscriptionUnavailable = errors.New("ningún proveedor de transcripción disponible")
	ErrContentRejected          = errors.New("contenido rechazado por la política de seguridad")
	ErrModerationUnavailable    = errors.New("servicio de moderación no disponible")
	ErrExtractionMalformed      = errors.New("la respuesta del modelo no cumple el esquema de extracción")
	ErrInvalidTransition        = errors.New("transición de estado inválida")
)
