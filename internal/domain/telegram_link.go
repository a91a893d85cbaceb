package domain

import "time"

// TelegramLink records that an outbound notification for a ticket produced
// a given Telegram message. Append-only; the inbound path currently resolves
// tickets by text parsing instead of consulting these records.
type TelegramLink struct {
	ID                int64
	TicketID          int64
	TelegramMessageID int
	CreatedAt         time.Time
}
