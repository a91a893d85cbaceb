package domain

import "time"

// InteractionOrigin indicates the channel a message arrived through.
type InteractionOrigin string

const (
	OriginPanel    InteractionOrigin = "panel"
	OriginTelegram InteractionOrigin = "telegram"
	OriginEmail    InteractionOrigin = "email"
)

// Interaction is a single chat message attached to a ticket. Immutable once
// created; UserID is nil for externally sourced messages without a known
// author.
type Interaction struct {
	ID         int64
	TicketID   int64
	UserID     *int64
	AuthorName *string
	Message    string
	Origin     InteractionOrigin
	CreatedAt  time.Time
}
