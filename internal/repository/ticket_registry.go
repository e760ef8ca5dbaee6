package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// TicketRegistry owns the active tickets collection, keyed by requester id.
// At most one open ticket exists per requester, and channel ids are unique
// among open tickets by construction. Every mutation persists the whole
// collection synchronously before returning; a failed write is logged and
// the in-memory state stays authoritative for the process lifetime.
type TicketRegistry struct {
	mu      sync.Mutex
	store   *persistence.SnapshotStore
	logger  *zap.Logger
	tickets map[string]domain.Ticket
}

// NewTicketRegistry loads the active tickets snapshot.
func NewTicketRegistry(store *persistence.SnapshotStore, logger *zap.Logger) (*TicketRegistry, error) {
	r := &TicketRegistry{
		store:   store,
		logger:  logger,
		tickets: make(map[string]domain.Ticket),
	}
	if err := store.Load(persistence.KindActiveTickets, &r.tickets); err != nil {
		return nil, err
	}
	return r, nil
}

// Open inserts a ticket for its requester. Fails with DUPLICATE_TICKET when
// the requester already has an open ticket.
func (r *TicketRegistry) Open(ticket domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.Requester.ID]; exists {
		return apperrors.NewDuplicateTicket(ticket.Requester.ID)
	}
	r.tickets[ticket.Requester.ID] = ticket
	r.persistLocked()
	return nil
}

// Get returns the open ticket for a requester.
func (r *TicketRegistry) Get(requesterID string) (domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[requesterID]
	return ticket, ok
}

// FindByChannel scans for the ticket bound to a channel. Linear scan is fine
// at the expected scale of tens of open tickets.
func (r *TicketRegistry) FindByChannel(channelID string) (domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ChannelID == channelID {
			return ticket, true
		}
	}
	return domain.Ticket{}, false
}

// Assume sets the assignee for the ticket bound to channelID and returns the
// updated ticket along with the previous assignee, if any. Re-assuming an
// already-assumed ticket silently overwrites the assignee.
func (r *TicketRegistry) Assume(channelID string, staff domain.StaffRef) (domain.Ticket, *domain.StaffRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for requesterID, ticket := range r.tickets {
		if ticket.ChannelID != channelID {
			continue
		}
		previous := ticket.Assignee
		assignee := staff
		ticket.Assignee = &assignee
		r.tickets[requesterID] = ticket
		r.persistLocked()
		return ticket, previous, nil
	}
	return domain.Ticket{}, nil, apperrors.NewNotFound("ticket", map[string]any{"channel_id": channelID})
}

// Close removes the ticket bound to channelID and returns it for archival.
// Removal here is the single point of truth against double closure: only
// the caller that receives the ticket proceeds to archive it.
func (r *TicketRegistry) Close(channelID string) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for requesterID, ticket := range r.tickets {
		if ticket.ChannelID != channelID {
			continue
		}
		delete(r.tickets, requesterID)
		r.persistLocked()
		return ticket, nil
	}
	return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"channel_id": channelID})
}

// Reconcile drops every ticket whose channel no longer qualifies according
// to the supplied predicate. The existence checks run concurrently since
// they are read-only against the platform; removal happens afterwards in a
// single pass. Returns the requester ids that were removed.
func (r *TicketRegistry) Reconcile(ctx context.Context, channelStillValid func(ctx context.Context, channelID string) bool) []string {
	r.mu.Lock()
	type entry struct{ requesterID, channelID string }
	checks := make([]entry, 0, len(r.tickets))
	for requesterID, ticket := range r.tickets {
		checks = append(checks, entry{requesterID, ticket.ChannelID})
	}
	r.mu.Unlock()

	var (
		wg      sync.WaitGroup
		staleMu sync.Mutex
		stale   []string
	)
	for _, check := range checks {
		wg.Add(1)
		go func(check entry) {
			defer wg.Done()
			if !channelStillValid(ctx, check.channelID) {
				staleMu.Lock()
				stale = append(stale, check.requesterID)
				staleMu.Unlock()
			}
		}(check)
	}
	wg.Wait()

	if len(stale) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := make([]string, 0, len(stale))
	for _, requesterID := range stale {
		if _, ok := r.tickets[requesterID]; ok {
			delete(r.tickets, requesterID)
			removed = append(removed, requesterID)
		}
	}
	if len(removed) > 0 {
		r.persistLocked()
	}
	return removed
}

// Len reports the number of open tickets.
func (r *TicketRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

// Snapshot returns a copy of the active collection.
func (r *TicketRegistry) Snapshot() map[string]domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.Ticket, len(r.tickets))
	for k, v := range r.tickets {
		out[k] = v
	}
	return out
}

// Flush rewrites the snapshot, used at shutdown.
func (r *TicketRegistry) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(persistence.KindActiveTickets, r.tickets); err != nil {
		return apperrors.NewPersistenceError("active tickets", err)
	}
	return nil
}

func (r *TicketRegistry) persistLocked() {
	if err := r.store.Save(persistence.KindActiveTickets, r.tickets); err != nil {
		r.logger.Error("failed to persist active tickets", zap.Error(err))
	}
}
