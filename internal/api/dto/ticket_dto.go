package dto

import (
	"time"

	"github.com/updesk/helpdesk/internal/domain"
)

// ProposeTicketRequest payload. Attachment travels base64-encoded.
type ProposeTicketRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Attachment     []byte  `json:"attachment,omitempty"`
	AttachmentName *string `json:"attachment_name,omitempty"`
}

// TicketProposalResponse returns the AI-enriched draft.
type TicketProposalResponse struct {
	DraftID           string                `json:"draft_id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Category          string                `json:"category"`
	Priority          domain.TicketPriority `json:"priority"`
	SuggestedSolution string                `json:"suggested_solution"`
}

// ConfirmTicketRequest payload for confirm and resolve-by-ai.
type ConfirmTicketRequest struct {
	DraftID string `json:"draft_id"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	Destination string                 `json:"destination"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             int64                 `json:"id"`
	Title          string                `json:"title"`
	Category       string                `json:"category"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	RequesterID    int64                 `json:"requester_id"`
	AssigneeID     *int64                `json:"assignee_id"`
	CreatedAt      time.Time             `json:"created_at"`
	LastModifiedAt *time.Time            `json:"last_modified_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Category          string                `json:"category"`
	Priority          domain.TicketPriority `json:"priority"`
	Status            domain.TicketStatus   `json:"status"`
	RequesterID       int64                 `json:"requester_id"`
	RequesterEmail    *string               `json:"requester_email"`
	RequesterName     *string               `json:"requester_name"`
	AssigneeID        *int64                `json:"assignee_id"`
	SuggestedSolution *string               `json:"suggested_solution"`
	AttachmentName    *string               `json:"attachment_name"`
	CreatedAt         time.Time             `json:"created_at"`
	LastModifiedAt    *time.Time            `json:"last_modified_at"`
}

// TriageCountersResponse summarizes the queue.
type TriageCountersResponse struct {
	AwaitingTriage int64 `json:"awaiting_triage"`
	HandledToday   int64 `json:"handled_today"`
	PendingOver24h int64 `json:"pending_over_24h"`
}

// TriagePageResponse is one page of the triage queue.
type TriagePageResponse struct {
	Tickets  []TicketSummary        `json:"tickets"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Counters TriageCountersResponse `json:"counters"`
}
