package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values match the
// labels persisted by the UpDesk database.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "Aberto"
	TicketStatusInProgress   TicketStatus = "Em Atendimento"
	TicketStatusResolved     TicketStatus = "Resolvido"
	TicketStatusResolvedByAI TicketStatus = "Resolvido por IA"
)

// TicketPriority enumerates urgency as classified by triage or the AI.
type TicketPriority string

const (
	TicketPriorityLow          TicketPriority = "Baixa"
	TicketPriorityMedium       TicketPriority = "Média"
	TicketPriorityHigh         TicketPriority = "Alta"
	TicketPriorityUnclassified TicketPriority = "Não Classificada"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                int64
	Title             string
	Description       string
	Category          string
	Priority          TicketPriority
	Status            TicketStatus
	RequesterID       int64
	RequesterEmail    *string
	RequesterName     *string
	AssigneeID        *int64
	SuggestedSolution *string
	Attachment        []byte
	AttachmentName    *string
	CreatedAt         time.Time
	LastModifiedAt    *time.Time
}

// TicketDraft holds a proposed ticket between the AI consultation step and
// the requester's confirm / resolve-by-AI decision.
type TicketDraft struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	Priority          TicketPriority `json:"priority"`
	SuggestedSolution string         `json:"suggested_solution"`
	Attachment        []byte         `json:"attachment,omitempty"`
	AttachmentName    *string        `json:"attachment_name,omitempty"`
}
