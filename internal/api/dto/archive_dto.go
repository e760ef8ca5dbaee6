package dto

import (
	"time"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
)

// ArchiveIngestRequest is the payload the bot posts to the dashboard when a
// ticket is archived. Ingestion is idempotent on Ticket.ID.
type ArchiveIngestRequest struct {
	Ticket     domain.ClosedTicket      `json:"ticket"`
	Transcript []domain.TranscriptEntry `json:"transcript"`
}

// ClosedTicketSummary is one row of the dashboard ticket list.
type ClosedTicketSummary struct {
	ID           string                `json:"id"`
	Requester    string                `json:"requester"`
	RequesterID  string                `json:"requester_id"`
	Category     domain.Category       `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	ClosedAt     time.Time             `json:"closed_at"`
	Duration     string                `json:"duration"`
	ClosedBy     string                `json:"closed_by"`
	Satisfaction int                   `json:"satisfaction"`
	Reason       string                `json:"reason"`
}

// StatsResponse aggregates the archive for the dashboard landing page.
type StatsResponse struct {
	TotalClosed         int                            `json:"total_closed"`
	ByCategory          map[domain.Category]int        `json:"by_category"`
	ByPriority          map[domain.TicketPriority]int  `json:"by_priority"`
	AverageSatisfaction float64                        `json:"average_satisfaction"`
	ClosedLast24h       int                            `json:"closed_last_24h"`
}

// TranscriptResponse returns one archived ticket's transcript.
type TranscriptResponse struct {
	TicketID string                   `json:"ticket_id"`
	Entries  []domain.TranscriptEntry `json:"entries"`
}

// StatusResponse mirrors the original bot status endpoint.
type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Memory    string `json:"memory"`
}
