package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"go.uber.org/zap"
)

// Kind names one of the persisted collections.
type Kind string

const (
	KindActiveTickets Kind = "active_tickets"
	KindClosedTickets Kind = "closed_tickets"
	KindTranscripts   Kind = "transcripts"
	KindGuildConfigs  Kind = "guild_configs"
)

// SnapshotStore persists whole collections as single JSON documents.
// Each Save rewrites the entire file; there are no partial updates and no
// locking. Callers serialize mutation of a given kind.
type SnapshotStore struct {
	dir    string
	logger *zap.Logger
}

// NewSnapshotStore creates the data directory and returns the store.
func NewSnapshotStore(dir string, logger *zap.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &SnapshotStore{dir: dir, logger: logger}, nil
}

// Path returns the snapshot file path for a kind.
func (s *SnapshotStore) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// Load reads a collection into out, which must be a pointer to a map
// initialized by the caller. A missing file is not an error. Malformed
// content is logged and left as the empty collection; never crash on
// corrupt state. Decoding goes through a temporary so a document that fails
// partway through never leaves out half populated.
func (s *SnapshotStore) Load(kind Kind, out any) error {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s snapshot: %w", kind, err)
	}
	decoded := reflect.New(reflect.ValueOf(out).Elem().Type())
	if err := json.Unmarshal(data, decoded.Interface()); err != nil {
		s.logger.Warn("discarding malformed snapshot",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil
	}
	// A "null" document decodes to a nil map; keep the caller's empty one.
	if !decoded.Elem().IsNil() {
		reflect.ValueOf(out).Elem().Set(decoded.Elem())
	}
	return nil
}

// Save serializes the whole collection and atomically replaces the snapshot
// file via a temp file and rename, so a crash mid-write never leaves a
// truncated document.
func (s *SnapshotStore) Save(kind Kind, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s snapshot: %w", kind, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(kind)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s snapshot: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s snapshot: %w", kind, err)
	}
	if err := os.Rename(tmpName, s.Path(kind)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s snapshot: %w", kind, err)
	}
	return nil
}
