package repository

import (
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
)

// Collections bundles the four file-backed collections. Constructed once at
// startup from the snapshot store, handed into handlers, and flushed at
// shutdown; there is no ambient module-level state.
type Collections struct {
	Tickets     *TicketRegistry
	Archive     *ArchiveRepository
	Transcripts *TranscriptRepository
	Configs     *ConfigRepository
}

// NewCollections loads all four snapshots.
func NewCollections(store *persistence.SnapshotStore, logger *zap.Logger) (*Collections, error) {
	tickets, err := NewTicketRegistry(store, logger)
	if err != nil {
		return nil, err
	}
	archive, err := NewArchiveRepository(store, logger)
	if err != nil {
		return nil, err
	}
	transcripts, err := NewTranscriptRepository(store, logger)
	if err != nil {
		return nil, err
	}
	configs, err := NewConfigRepository(store, logger)
	if err != nil {
		return nil, err
	}
	return &Collections{
		Tickets:     tickets,
		Archive:     archive,
		Transcripts: transcripts,
		Configs:     configs,
	}, nil
}

// Flush rewrites every snapshot. Called at shutdown and from the last-resort
// failure path to minimize loss.
func (c *Collections) Flush(logger *zap.Logger) {
	for name, flush := range map[string]func() error{
		"active_tickets": c.Tickets.Flush,
		"closed_tickets": c.Archive.Flush,
		"transcripts":    c.Transcripts.Flush,
		"guild_configs":  c.Configs.Flush,
	} {
		if err := flush(); err != nil {
			logger.Error("flush failed", zap.String("collection", name), zap.Error(err))
		}
	}
}
