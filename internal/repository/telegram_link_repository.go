package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/updesk/helpdesk/internal/domain"
)

// TelegramLinkRepository stores outbound Telegram message correlation records.
// TODO: resolve inbound replies via these records instead of text parsing
// once the bot always posts with a stored link.
type TelegramLinkRepository interface {
	Create(ctx context.Context, link *domain.TelegramLink) error
}

type telegramLinkRepository struct {
	pool *pgxpool.Pool
}

// NewTelegramLinkRepository builds repository.
func NewTelegramLinkRepository(pool *pgxpool.Pool) TelegramLinkRepository {
	return &telegramLinkRepository{pool: pool}
}

func (r *telegramLinkRepository) Create(ctx context.Context, link *domain.TelegramLink) error {
	const query = `
        INSERT INTO telegram_links (ticket_id, telegram_message_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		link.TicketID,
		link.TelegramMessageID,
	).Scan(&link.ID, &link.CreatedAt)
}
