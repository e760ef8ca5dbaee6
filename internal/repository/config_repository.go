package repository

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// ConfigRepository owns the per-guild panel configuration. One record per
// guild, upserted, never deleted programmatically.
type ConfigRepository struct {
	mu      sync.Mutex
	store   *persistence.SnapshotStore
	logger  *zap.Logger
	configs map[string]domain.GuildConfig
}

// NewConfigRepository loads the guild configs snapshot.
func NewConfigRepository(store *persistence.SnapshotStore, logger *zap.Logger) (*ConfigRepository, error) {
	r := &ConfigRepository{
		store:   store,
		logger:  logger,
		configs: make(map[string]domain.GuildConfig),
	}
	if err := store.Load(persistence.KindGuildConfigs, &r.configs); err != nil {
		return nil, err
	}
	return r, nil
}

// Upsert writes the config for a guild.
func (r *ConfigRepository) Upsert(cfg domain.GuildConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.GuildID] = cfg
	r.persistLocked()
}

// Get returns the config for a guild.
func (r *ConfigRepository) Get(guildID string) (domain.GuildConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	return cfg, ok
}

// Flush rewrites the snapshot, used at shutdown.
func (r *ConfigRepository) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(persistence.KindGuildConfigs, r.configs); err != nil {
		return apperrors.NewPersistenceError("guild configs", err)
	}
	return nil
}

func (r *ConfigRepository) persistLocked() {
	if err := r.store.Save(persistence.KindGuildConfigs, r.configs); err != nil {
		r.logger.Error("failed to persist guild configs", zap.Error(err))
	}
}
