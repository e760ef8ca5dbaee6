package repository

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// ArchiveRepository owns the append-only closed tickets collection, keyed by
// archival id. Records are immutable once written; Upsert exists only for
// the dashboard ingestion path, which is idempotent on the archival id.
type ArchiveRepository struct {
	mu     sync.Mutex
	store  *persistence.SnapshotStore
	logger *zap.Logger
	closed map[string]domain.ClosedTicket
}

// NewArchiveRepository loads the closed tickets snapshot.
func NewArchiveRepository(store *persistence.SnapshotStore, logger *zap.Logger) (*ArchiveRepository, error) {
	r := &ArchiveRepository{
		store:  store,
		logger: logger,
		closed: make(map[string]domain.ClosedTicket),
	}
	if err := store.Load(persistence.KindClosedTickets, &r.closed); err != nil {
		return nil, err
	}
	return r, nil
}

// Append adds a new archival record. The id must be fresh.
func (r *ArchiveRepository) Append(ticket domain.ClosedTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.closed[ticket.ID]; exists {
		return apperrors.NewValidationError("archival id already used", map[string]any{"id": ticket.ID})
	}
	r.closed[ticket.ID] = ticket
	r.persistLocked()
	return nil
}

// Upsert writes a record, overwriting any existing one with the same id.
// Re-posting the same id overwrites, it never duplicates.
func (r *ArchiveRepository) Upsert(ticket domain.ClosedTicket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed[ticket.ID] = ticket
	r.persistLocked()
}

// Get fetches one archival record.
func (r *ArchiveRepository) Get(id string) (domain.ClosedTicket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.closed[id]
	return ticket, ok
}

// List returns all records ordered by closure time, newest first.
func (r *ArchiveRepository) List() []domain.ClosedTicket {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ClosedTicket, 0, len(r.closed))
	for _, ticket := range r.closed {
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClosedAt.After(out[j].ClosedAt)
	})
	return out
}

// Len reports the number of archived tickets.
func (r *ArchiveRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.closed)
}

// Flush rewrites the snapshot, used at shutdown.
func (r *ArchiveRepository) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(persistence.KindClosedTickets, r.closed); err != nil {
		return apperrors.NewPersistenceError("closed tickets", err)
	}
	return nil
}

func (r *ArchiveRepository) persistLocked() {
	if err := r.store.Save(persistence.KindClosedTickets, r.closed); err != nil {
		r.logger.Error("failed to persist closed tickets", zap.Error(err))
	}
}
