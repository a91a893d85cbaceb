package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func (r *fakeTicketRepo) seed(ticket *domain.Ticket) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == 0 {
		r.nextID++
		ticket.ID = r.nextID
	} else if ticket.ID > r.nextID {
		r.nextID = ticket.ID
	}
	copied := *ticket
	r.tickets[copied.ID] = &copied
	return ticket
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now()
	copied := *ticket
	r.tickets[copied.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[copied.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if matchesFilter(ticket, filter) {
			result = append(result, *ticket)
		}
	}
	sortTickets(result, filter.OrderBy, filter.Descending)
	return result, nil
}

func sortTickets(tickets []domain.Ticket, orderBy string, descending bool) {
	less := func(a, b *domain.Ticket) bool {
		switch orderBy {
		case "id":
			return a.ID < b.ID
		case "title":
			return a.Title < b.Title
		case "priority":
			return a.Priority < b.Priority
		case "status":
			return a.Status < b.Status
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if descending {
			return less(&tickets[j], &tickets[i])
		}
		return less(&tickets[i], &tickets[j])
	})
}

func (r *fakeTicketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	tickets, _ := r.ListWithFilter(ctx, filter)
	return int64(len(tickets)), nil
}

func (r *fakeTicketRepo) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountInProgressModifiedSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusInProgress &&
			ticket.LastModifiedAt != nil && !ticket.LastModifiedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountOpenCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusOpen && !ticket.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.Status != nil && ticket.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && ticket.Priority != *filter.Priority {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			return ticket.ID == id
		}
		return strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(search))
	}
	return true
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	nextID       int64
	interactions []domain.Interaction
	createErr    error
}

func (r *fakeInteractionRepo) Create(ctx context.Context, interaction *domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	interaction.ID = r.nextID
	interaction.CreatedAt = time.Now()
	r.interactions = append(r.interactions, *interaction)
	return nil
}

func (r *fakeInteractionRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Interaction
	for _, interaction := range r.interactions {
		if interaction.TicketID == ticketID {
			result = append(result, interaction)
		}
	}
	return result, nil
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links []domain.TelegramLink
	err   error
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *domain.TelegramLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	link.ID = int64(len(r.links) + 1)
	link.CreatedAt = time.Now()
	r.links = append(r.links, *link)
	return nil
}
