package dto

import (
	"strings"

	"github.com/updesk/helpdesk/internal/domain"
)

// CreateMessageRequest accepts the historical synonym fields for the message
// body. The first non-empty one wins.
type CreateMessageRequest struct {
	Mensagem        string `json:"mensagem"`
	Conteudo        string `json:"conteudo"`
	Texto           string `json:"texto"`
	MensagemUsuario string `json:"mensagem_usuario"`
	Email           string `json:"email"`
	Nome            string `json:"nome"`
}

// Body resolves the message text across the synonym fields.
func (r CreateMessageRequest) Body() string {
	for _, candidate := range []string{r.Mensagem, r.Conteudo, r.Texto, r.MensagemUsuario} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// MessageResponse represents one conversation entry.
type MessageResponse struct {
	ID         int64                    `json:"id"`
	TicketID   int64                    `json:"ticket_id"`
	UserID     *int64                   `json:"user_id"`
	AuthorName *string                  `json:"author_name"`
	Message    string                   `json:"message"`
	Origin     domain.InteractionOrigin `json:"origin"`
	Timestamp  string                   `json:"timestamp"`
}
