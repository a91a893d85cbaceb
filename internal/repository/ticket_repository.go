package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/updesk/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters for the panel and the triage queue.
// Search is interpreted as a ticket id when numeric, otherwise as a
// case-insensitive title substring.
type TicketFilter struct {
	Search      string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	RequesterID *int64
	CreatedFrom *time.Time
	OrderBy     string
	Descending  bool
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error)
	CountInProgressModifiedSince(ctx context.Context, since time.Time) (int64, error)
	CountOpenCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, priority, status, requester_id,
               requester_email, requester_name, assignee_id, suggested_solution,
               attachment, attachment_name, created_at, last_modified_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status, requester_id,
            requester_email, requester_name, assignee_id, suggested_solution, attachment, attachment_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterID,
		ticket.RequesterEmail,
		ticket.RequesterName,
		ticket.AssigneeID,
		ticket.SuggestedSolution,
		ticket.Attachment,
		ticket.AttachmentName,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET priority=$1, status=$2, assignee_id=$3, suggested_solution=$4,
            last_modified_at=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Priority,
		ticket.Status,
		ticket.AssigneeID,
		ticket.SuggestedSolution,
		ticket.LastModifiedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterID,
		&ticket.RequesterEmail,
		&ticket.RequesterName,
		&ticket.AssigneeID,
		&ticket.SuggestedSolution,
		&ticket.Attachment,
		&ticket.AttachmentName,
		&ticket.CreatedAt,
		&ticket.LastModifiedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// sortColumns whitelists client-supplied sort fields.
var sortColumns = map[string]string{
	"id":               "id",
	"title":            "title",
	"priority":         "priority",
	"status":           "status",
	"created_at":       "created_at",
	"last_modified_at": "last_modified_at",
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := buildTicketClauses(filter)

	orderCol, ok := sortColumns[filter.OrderBy]
	if !ok {
		orderCol = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), orderCol, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	query := `SELECT COUNT(*) FROM tickets WHERE ` + strings.Join(clauses, " AND ")
	var count int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountInProgressModifiedSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE status=$1 AND last_modified_at IS NOT NULL AND last_modified_at >= $2`
	var count int64
	err := r.pool.QueryRow(ctx, query, domain.TicketStatusInProgress, since).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountOpenCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE status=$1 AND created_at <= $2`
	var count int64
	err := r.pool.QueryRow(ctx, query, domain.TicketStatusOpen, cutoff).Scan(&count)
	return count, err
}

func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			args = append(args, id)
			clauses = append(clauses, fmt.Sprintf("id=$%d", len(args)))
		} else {
			args = append(args, "%"+strings.ToLower(search)+"%")
			clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
		}
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	return clauses, args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Status,
			&ticket.RequesterID,
			&ticket.RequesterEmail,
			&ticket.RequesterName,
			&ticket.AssigneeID,
			&ticket.SuggestedSolution,
			&ticket.Attachment,
			&ticket.AttachmentName,
			&ticket.CreatedAt,
			&ticket.LastModifiedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
