package ports

import "context"

// Transcriber define el puerto de salida para transcripción de voz a texto.
// Cualquier proveedor (ElevenLabs, Whisper, mock) debe implementar esta interfaz.
// El contexto debe llevar un timeout: la falla de un proveedor hace que la
// cadena pase al siguiente, sin reintentos sobre el mismo.
type Transcriber interface {
	// Name identifica al proveedor en logs y en el pedido persistido.
	Name() string

	// Transcribe convierte el audio en texto plano.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
