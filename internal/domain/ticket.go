package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReconstructedRequesterID marks a ticket rebuilt from a channel name after
// registry state was lost. The original requester identity is unrecoverable.
const ReconstructedRequesterID = "unknown"

// UserRef identifies a platform user.
type UserRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar,omitempty"`
}

// StaffRef identifies the staff member who acted on a ticket.
type StaffRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ticket is one active support request bound to a private channel.
// It lives in the registry exactly as long as its channel is open.
type Ticket struct {
	ChannelID string    `json:"channelId"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Requester UserRef   `json:"user"`
	Assignee  *StaffRef `json:"assignee,omitempty"`
}

// Reconstructed reports whether the ticket was rebuilt from a channel name
// rather than loaded from authoritative registry state.
func (t Ticket) Reconstructed() bool {
	return t.Requester.ID == ReconstructedRequesterID
}

// ClosedTicket is the immutable archival record built once at closure.
type ClosedTicket struct {
	ID           string         `json:"id"`
	ChannelID    string         `json:"channelId"`
	Requester    UserRef        `json:"user"`
	Category     Category       `json:"category"`
	Priority     TicketPriority `json:"priority"`
	CreatedAt    time.Time      `json:"createdAt"`
	ClosedAt     time.Time      `json:"closedAt"`
	Duration     string         `json:"duration"`
	ClosedBy     StaffRef       `json:"closedBy"`
	Satisfaction int            `json:"satisfaction"`
	Reason       string         `json:"reason"`
}

// ChannelName builds the ticket channel name, embedding the category tag so
// identity can be recovered from the name alone.
func ChannelName(category Category, requesterName string) string {
	name := strings.ToLower(strings.TrimSpace(requesterName))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "usuario"
	}
	return fmt.Sprintf("ticket-%s-%s", category.Tag(), name)
}

// ParseChannelName recovers a low-confidence ticket from a channel display
// name of the form ticket-<tag>-<username>. Best effort: the requester id is
// the ReconstructedRequesterID sentinel and the creation time is unknown, so
// callers must treat the result as reconstructed, not authoritative.
func ParseChannelName(channelID, channelName string, now time.Time) (Ticket, error) {
	parts := strings.SplitN(channelName, "-", 3)
	if len(parts) < 2 || parts[0] != "ticket" {
		return Ticket{}, fmt.Errorf("channel name %q is not a ticket channel", channelName)
	}
	requesterName := "desconhecido"
	category := CategoryGeneralQuestion
	if len(parts) == 3 {
		category = CategoryFromTag(parts[1])
		requesterName = parts[2]
	} else {
		// Old naming without a category tag: ticket-<username>.
		requesterName = parts[1]
	}
	return Ticket{
		ChannelID: channelID,
		Category:  category,
		CreatedAt: now,
		Requester: UserRef{ID: ReconstructedRequesterID, Name: requesterName},
	}, nil
}

// FormatDuration renders a closure duration truncated to whole hours and
// minutes. Negative inputs clamp to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
