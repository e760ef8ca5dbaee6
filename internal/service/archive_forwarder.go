package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/dto"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/auth"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/config"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
)

// ArchiveForwarder ships archived tickets to the dashboard ingestion
// endpoint. Failures are logged and never retried; the file archive remains
// the source of truth and the dashboard tolerates re-posts of the same id.
type ArchiveForwarder struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.DashboardConfig
	tokens     *auth.TokenManager
	client     *http.Client
}

// NewArchiveForwarder creates the forwarder.
func NewArchiveForwarder(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.DashboardConfig) *ArchiveForwarder {
	return &ArchiveForwarder{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		tokens:     auth.NewTokenManager(cfg.SharedSecret, cfg.TokenTTLMinutes),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to closure events. A forwarder without an
// ingestion URL stays inert.
func (f *ArchiveForwarder) RegisterHandlers() {
	if f.dispatcher == nil || f.cfg.IngestURL == "" {
		return
	}
	f.dispatcher.Subscribe(events.EventTicketClosed, f.handleTicketClosed)
}

func (f *ArchiveForwarder) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	body, err := json.Marshal(dto.ArchiveIngestRequest{
		Ticket:     payload.Ticket,
		Transcript: payload.Transcript,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.IngestURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.cfg.SharedSecret != "" {
		token, _, err := f.tokens.GenerateToken()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("archive forward failed",
			zap.String("ticket_id", payload.Ticket.ID), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		f.logger.Warn("archive forward rejected",
			zap.String("ticket_id", payload.Ticket.ID),
			zap.Int("status", resp.StatusCode))
		return nil
	}
	f.logger.Info("archived ticket forwarded", zap.String("ticket_id", payload.Ticket.ID))
	return nil
}
