package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
)

// ArchivePgRepository mirrors ingested archive records into Postgres for the
// dashboard. Writes are upserts keyed by the archival id, matching the
// idempotency contract of the ingestion endpoint.
type ArchivePgRepository struct {
	pool *pgxpool.Pool
}

// NewArchivePgRepository instantiates the repository; pool may be nil when
// Postgres is not configured, in which case every method is a no-op.
func NewArchivePgRepository(pool *pgxpool.Pool) *ArchivePgRepository {
	return &ArchivePgRepository{pool: pool}
}

// Enabled reports whether a Postgres pool is attached.
func (r *ArchivePgRepository) Enabled() bool {
	return r != nil && r.pool != nil
}

// Upsert writes the closed ticket and its transcript.
func (r *ArchivePgRepository) Upsert(ctx context.Context, ticket domain.ClosedTicket, transcript []domain.TranscriptEntry) error {
	if !r.Enabled() {
		return nil
	}

	const ticketQuery = `
        INSERT INTO closed_tickets (id, channel_id, requester_id, requester, category, priority,
            created_at, closed_at, duration, closed_by_id, closed_by, satisfaction, reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (id) DO UPDATE SET
            channel_id=EXCLUDED.channel_id, requester_id=EXCLUDED.requester_id,
            requester=EXCLUDED.requester, category=EXCLUDED.category, priority=EXCLUDED.priority,
            created_at=EXCLUDED.created_at, closed_at=EXCLUDED.closed_at, duration=EXCLUDED.duration,
            closed_by_id=EXCLUDED.closed_by_id, closed_by=EXCLUDED.closed_by,
            satisfaction=EXCLUDED.satisfaction, reason=EXCLUDED.reason`
	if _, err := r.pool.Exec(ctx, ticketQuery,
		ticket.ID,
		ticket.ChannelID,
		ticket.Requester.ID,
		ticket.Requester.Name,
		ticket.Category,
		ticket.Priority,
		ticket.CreatedAt,
		ticket.ClosedAt,
		ticket.Duration,
		ticket.ClosedBy.ID,
		ticket.ClosedBy.Name,
		ticket.Satisfaction,
		ticket.Reason,
	); err != nil {
		return fmt.Errorf("upsert closed ticket %s: %w", ticket.ID, err)
	}

	entries, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("encode transcript %s: %w", ticket.ID, err)
	}
	const transcriptQuery = `
        INSERT INTO transcripts (ticket_id, entries)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id) DO UPDATE SET entries=EXCLUDED.entries`
	if _, err := r.pool.Exec(ctx, transcriptQuery, ticket.ID, entries); err != nil {
		return fmt.Errorf("upsert transcript %s: %w", ticket.ID, err)
	}
	return nil
}
