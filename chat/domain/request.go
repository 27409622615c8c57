package domain

// Request é a requisição já validada.
type Request struct {
	Message string
	History []Message
	// Image é nil quando não há anexo; quando presente Kind == KindImage.
	Image *Part
}
