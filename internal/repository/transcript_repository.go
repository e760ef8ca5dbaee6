package repository

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// TranscriptRepository owns the per-channel message logs. While a ticket is
// open its transcript is keyed by channel id; at archival the sequence is
// moved, not copied, under the archival id. Entries are append-only and keep
// arrival order. There is no size cap: an unbounded conversation grows the
// snapshot unboundedly, an accepted constraint of the archival use case.
type TranscriptRepository struct {
	mu          sync.Mutex
	store       *persistence.SnapshotStore
	logger      *zap.Logger
	transcripts map[string][]domain.TranscriptEntry
}

// NewTranscriptRepository loads the transcripts snapshot.
func NewTranscriptRepository(store *persistence.SnapshotStore, logger *zap.Logger) (*TranscriptRepository, error) {
	r := &TranscriptRepository{
		store:       store,
		logger:      logger,
		transcripts: make(map[string][]domain.TranscriptEntry),
	}
	if err := store.Load(persistence.KindTranscripts, &r.transcripts); err != nil {
		return nil, err
	}
	return r, nil
}

// Append records one entry and persists the collection.
func (r *TranscriptRepository) Append(key string, entry domain.TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts[key] = append(r.transcripts[key], entry)
	r.persistLocked()
}

// Get returns the entries for a key in arrival order.
func (r *TranscriptRepository) Get(key string) []domain.TranscriptEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.transcripts[key]
	out := make([]domain.TranscriptEntry, len(entries))
	copy(out, entries)
	return out
}

// Rekey moves a channel's transcript under the archival id and returns the
// moved entries. The channel key ceases to exist afterwards.
func (r *TranscriptRepository) Rekey(channelID, archiveID string) []domain.TranscriptEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.transcripts[channelID]
	if !ok {
		return nil
	}
	delete(r.transcripts, channelID)
	r.transcripts[archiveID] = entries
	r.persistLocked()
	out := make([]domain.TranscriptEntry, len(entries))
	copy(out, entries)
	return out
}

// Put stores a full sequence under a key, used by dashboard ingestion.
func (r *TranscriptRepository) Put(key string, entries []domain.TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts[key] = entries
	r.persistLocked()
}

// Flush rewrites the snapshot, used at shutdown.
func (r *TranscriptRepository) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(persistence.KindTranscripts, r.transcripts); err != nil {
		return apperrors.NewPersistenceError("transcripts", err)
	}
	return nil
}

func (r *TranscriptRepository) persistLocked() {
	if err := r.store.Save(persistence.KindTranscripts, r.transcripts); err != nil {
		r.logger.Error("failed to persist transcripts", zap.Error(err))
	}
}
