package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/dto"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
)

// ArchiveHandler serves the dashboard archive API: ingestion of closed
// tickets plus transcripts, the ticket list, per-ticket transcripts and
// aggregate stats.
type ArchiveHandler struct {
	archive     *repository.ArchiveRepository
	transcripts *repository.TranscriptRepository
	pg          *repository.ArchivePgRepository
	cache       *persistence.Redis
	logger      *zap.Logger
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(archive *repository.ArchiveRepository, transcripts *repository.TranscriptRepository, pg *repository.ArchivePgRepository, cache *persistence.Redis, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archive:     archive,
		transcripts: transcripts,
		pg:          pg,
		cache:       cache,
		logger:      logger,
	}
}

// Ingest POST /api/archive. Idempotent on the archival id: re-posting the
// same id overwrites, it never duplicates.
func (h *ArchiveHandler) Ingest(c *fiber.Ctx) error {
	var req dto.ArchiveIngestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Ticket.ID == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}
	if strings.TrimSpace(req.Ticket.Reason) == "" {
		return apperrors.NewValidationError("close reason required", nil)
	}

	h.archive.Upsert(req.Ticket)
	h.transcripts.Put(req.Ticket.ID, req.Transcript)

	if h.pg.Enabled() {
		if err := h.pg.Upsert(c.UserContext(), req.Ticket, req.Transcript); err != nil {
			// The file archive already holds the record; the mirror catches
			// up on the next re-post.
			h.logger.Warn("postgres mirror write failed",
				zap.String("ticket_id", req.Ticket.ID), zap.Error(err))
		}
	}
	h.invalidateStats(c.UserContext())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": req.Ticket.ID}})
}

// List GET /api/tickets.
func (h *ArchiveHandler) List(c *fiber.Ctx) error {
	tickets := h.archive.List()
	items := make([]dto.ClosedTicketSummary, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, dto.ClosedTicketSummary{
			ID:           ticket.ID,
			Requester:    ticket.Requester.Name,
			RequesterID:  ticket.Requester.ID,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			CreatedAt:    ticket.CreatedAt,
			ClosedAt:     ticket.ClosedAt,
			Duration:     ticket.Duration,
			ClosedBy:     ticket.ClosedBy.Name,
			Satisfaction: ticket.Satisfaction,
			Reason:       ticket.Reason,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Transcript GET /api/tickets/:id/transcript.
func (h *ArchiveHandler) Transcript(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := h.archive.Get(id); !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": dto.TranscriptResponse{
		TicketID: id,
		Entries:  h.transcripts.Get(id),
	}})
}

// Stats GET /api/stats. Served from the Redis cache when available.
func (h *ArchiveHandler) Stats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if cached, ok := h.cachedStats(ctx); ok {
		return c.JSON(fiber.Map{"data": cached})
	}

	stats := h.computeStats()
	h.storeStats(ctx, stats)
	return c.JSON(fiber.Map{"data": stats})
}

func (h *ArchiveHandler) computeStats() dto.StatsResponse {
	tickets := h.archive.List()
	stats := dto.StatsResponse{
		TotalClosed: len(tickets),
		ByCategory:  make(map[domain.Category]int),
		ByPriority:  make(map[domain.TicketPriority]int),
	}
	var satisfactionSum int
	dayAgo := time.Now().Add(-24 * time.Hour)
	for _, ticket := range tickets {
		stats.ByCategory[ticket.Category]++
		stats.ByPriority[ticket.Priority]++
		satisfactionSum += ticket.Satisfaction
		if ticket.ClosedAt.After(dayAgo) {
			stats.ClosedLast24h++
		}
	}
	if len(tickets) > 0 {
		stats.AverageSatisfaction = float64(satisfactionSum) / float64(len(tickets))
	}
	return stats
}

func (h *ArchiveHandler) cachedStats(ctx context.Context) (dto.StatsResponse, bool) {
	var stats dto.StatsResponse
	if h.cache == nil || h.cache.Client == nil {
		return stats, false
	}
	raw, err := h.cache.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return stats, false
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return stats, false
	}
	return stats, true
}

func (h *ArchiveHandler) storeStats(ctx context.Context, stats dto.StatsResponse) {
	if h.cache == nil || h.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := h.cache.Client.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		h.logger.Debug("stats cache write failed", zap.Error(err))
	}
}

func (h *ArchiveHandler) invalidateStats(ctx context.Context) {
	if h.cache == nil || h.cache.Client == nil {
		return
	}
	if err := h.cache.Client.Del(ctx, statsCacheKey).Err(); err != nil {
		h.logger.Debug("stats cache invalidation failed", zap.Error(err))
	}
}
