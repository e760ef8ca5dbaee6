package events

import (
	"time"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened       EventType = "ticket_opened"
	EventTicketAssumed      EventType = "ticket_assumed"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketReconciled   EventType = "ticket_reconciled"
	EventTranscriptRecorded EventType = "transcript_recorded"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChannelID string      `json:"channel_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Requester domain.UserRef  `json:"requester"`
	Category  domain.Category `json:"category"`
}

// TicketAssumedPayload payload.
type TicketAssumedPayload struct {
	Assignee domain.StaffRef `json:"assignee"`
	// Previous assignee when the assume overwrote one; nil on first assume.
	Previous *domain.StaffRef `json:"previous,omitempty"`
}

// TicketClosedPayload carries the full archival record plus its transcript
// so subscribers (the dashboard forwarder) need no further lookups.
type TicketClosedPayload struct {
	Ticket     domain.ClosedTicket      `json:"ticket"`
	Transcript []domain.TranscriptEntry `json:"transcript"`
}

// TicketReconciledPayload payload.
type TicketReconciledPayload struct {
	RemovedRequesters []string `json:"removed_requesters"`
}

// TranscriptRecordedPayload payload.
type TranscriptRecordedPayload struct {
	Entry domain.TranscriptEntry `json:"entry"`
}
