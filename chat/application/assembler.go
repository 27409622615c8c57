package application

import "chat-gateway/chat/domain"

// Assembler monta a sequência de mensagens que vai para o provedor.
type Assembler struct {
	Sanitizer Sanitizer
}

// Assemble preserva o histórico na ordem e com os papéis originais, sanitiza
// só o conteúdo string (partes passam como estão) e fecha com o turno atual do
// usuário: texto puro sem imagem, ou [texto, imagem] com imagem.
//
// message já deve vir sanitizada. Função pura: não guarda estado.
func (a Assembler) Assemble(message string, history []domain.Message, image *domain.Part) []domain.Message {
	out := make([]domain.Message, 0, len(history)+1)
	for _, m := range history {
		content := m.Content
		if !content.IsParts() {
			content = domain.TextContent(a.Sanitizer.Sanitize(content.Text()))
		}
		out = append(out, domain.Message{Role: m.Role, Content: content})
	}

	current := domain.TextContent(message)
	if image != nil {
		current = domain.PartsContent(
			domain.TextPart(message),
			domain.ImagePart(image.MediaType, image.Data),
		)
	}
	return append(out, domain.Message{Role: domain.RoleUser, Content: current})
}
