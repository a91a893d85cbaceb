package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/updesk/helpdesk/internal/domain"
)

// InteractionRepository manages the append-only ticket conversation log.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error)
}

type interactionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository builds repository.
func NewInteractionRepository(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepository{pool: pool}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	const query = `
        INSERT INTO interactions (ticket_id, user_id, message, origin)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		interaction.TicketID,
		interaction.UserID,
		interaction.Message,
		interaction.Origin,
	).Scan(&interaction.ID, &interaction.CreatedAt)
}

func (r *interactionRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error) {
	const query = `
        SELECT i.id, i.ticket_id, i.user_id, u.name, i.message, i.origin, i.created_at
        FROM interactions i
        LEFT JOIN users u ON u.id = i.user_id
        WHERE i.ticket_id=$1 ORDER BY i.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Interaction
	for rows.Next() {
		var interaction domain.Interaction
		if err := rows.Scan(
			&interaction.ID,
			&interaction.TicketID,
			&interaction.UserID,
			&interaction.AuthorName,
			&interaction.Message,
			&interaction.Origin,
			&interaction.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, interaction)
	}
	return result, rows.Err()
}
