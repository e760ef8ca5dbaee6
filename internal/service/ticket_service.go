package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// Delays for the closure teardown sequence. The deletion delay is measured
// from the closing notice, not from closure itself.
const (
	DefaultNoticeDelay = 5 * time.Second
	DefaultDeleteDelay = 10 * time.Second
)

const defaultSatisfaction = 5

// ChannelAPI is the outbound surface of the messaging platform that the
// lifecycle needs. The bot package implements it with discordgo.
type ChannelAPI interface {
	CreateTicketChannel(ctx context.Context, requester domain.UserRef, category domain.Category) (string, error)
	PostClosingNotice(ctx context.Context, channelID string, closed domain.ClosedTicket) error
	DeleteChannel(ctx context.Context, channelID string) error
	ChannelExists(ctx context.Context, channelID string) bool
}

// pendingClose is one entry of the close-reason correlation table. The modal
// submission arrives as a separate event carrying only the channel id, so
// the channel id is the correlation key.
type pendingClose struct {
	RequestedBy domain.StaffRef
	RequestedAt time.Time
}

// TicketService coordinates the ticket lifecycle:
// open -> assumed (optional) -> close pending -> closed and archived.
type TicketService struct {
	collections *repository.Collections
	channels    ChannelAPI
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	now         func() time.Time
	noticeDelay time.Duration
	deleteDelay time.Duration

	pendingMu sync.Mutex
	pending   map[string]pendingClose
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Collections *repository.Collections
	Channels    ChannelAPI
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger

	// Overridable in tests; zero values select the defaults.
	Now         func() time.Time
	NoticeDelay time.Duration
	DeleteDelay time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	noticeDelay := deps.NoticeDelay
	if noticeDelay == 0 {
		noticeDelay = DefaultNoticeDelay
	}
	deleteDelay := deps.DeleteDelay
	if deleteDelay == 0 {
		deleteDelay = DefaultDeleteDelay
	}
	return &TicketService{
		collections: deps.Collections,
		channels:    deps.Channels,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         now,
		noticeDelay: noticeDelay,
		deleteDelay: deleteDelay,
		pending:     make(map[string]pendingClose),
	}
}

// OpenTicket creates the dedicated channel and registers the ticket. The
// duplicate check runs before the channel is created so rejected requesters
// never cost a platform call.
func (s *TicketService) OpenTicket(ctx context.Context, requester domain.UserRef, category domain.Category) (domain.Ticket, error) {
	if _, exists := s.collections.Tickets.Get(requester.ID); exists {
		return domain.Ticket{}, apperrors.NewDuplicateTicket(requester.ID)
	}

	channelID, err := s.channels.CreateTicketChannel(ctx, requester, category)
	if err != nil {
		return domain.Ticket{}, apperrors.NewExternalAPIError("create channel", err)
	}

	ticket := domain.Ticket{
		ChannelID: channelID,
		Category:  category,
		CreatedAt: s.now(),
		Requester: requester,
	}
	if err := s.collections.Tickets.Open(ticket); err != nil {
		// Lost the race against a concurrent open for the same requester.
		// The fresh channel is now orphaned; remove it best effort.
		if delErr := s.channels.DeleteChannel(ctx, channelID); delErr != nil {
			s.logger.Warn("failed to remove orphaned channel",
				zap.String("channel_id", channelID), zap.Error(delErr))
		}
		return domain.Ticket{}, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketOpened,
		ChannelID: channelID,
		Payload: events.TicketOpenedPayload{
			Requester: requester,
			Category:  category,
		},
	})
	return ticket, nil
}

// FindByChannel resolves the open ticket bound to a channel.
func (s *TicketService) FindByChannel(channelID string) (domain.Ticket, bool) {
	return s.collections.Tickets.FindByChannel(channelID)
}

// Assume records the acting staff member as assignee. Re-assuming silently
// overwrites the previous assignee; there is no reassignment guard.
func (s *TicketService) Assume(ctx context.Context, channelID string, staff domain.StaffRef) (domain.Ticket, error) {
	ticket, previous, err := s.collections.Tickets.Assume(channelID, staff)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTicketAssumed,
		ChannelID: channelID,
		Payload: events.TicketAssumedPayload{
			Assignee: staff,
			Previous: previous,
		},
	})
	return ticket, nil
}

// RequestClose enters the close-pending state: the channel is recorded as
// awaiting a close reason so the eventual modal submission can be correlated
// back. A repeated request simply refreshes the entry.
func (s *TicketService) RequestClose(channelID string, staff domain.StaffRef) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[channelID] = pendingClose{RequestedBy: staff, RequestedAt: s.now()}
}

// AwaitingCloseReason reports whether a close is pending for the channel.
func (s *TicketService) AwaitingCloseReason(channelID string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	_, ok := s.pending[channelID]
	return ok
}

// SubmitCloseReason completes the closure. The registry removal is the
// single point of truth: of two near-simultaneous submissions only the one
// that removes the entry archives the ticket. When the registry has no entry
// for the channel (state lost across a restart), a low-confidence ticket is
// reconstructed from the channel name and closed through the same path.
func (s *TicketService) SubmitCloseReason(ctx context.Context, channelID, channelName, reason string, staff domain.StaffRef) (domain.ClosedTicket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ClosedTicket{}, apperrors.NewValidationError("close reason is required", nil)
	}

	s.pendingMu.Lock()
	if _, ok := s.pending[channelID]; !ok {
		s.logger.Warn("close reason arrived without pending entry", zap.String("channel_id", channelID))
	}
	delete(s.pending, channelID)
	s.pendingMu.Unlock()

	ticket, err := s.collections.Tickets.Close(channelID)
	if err != nil {
		ticket, err = domain.ParseChannelName(channelID, channelName, s.now())
		if err != nil {
			return domain.ClosedTicket{}, apperrors.NewNotFound("ticket", map[string]any{"channel_id": channelID})
		}
		s.logger.Warn("closing reconstructed ticket",
			zap.String("channel_id", channelID),
			zap.String("channel_name", channelName))
	}

	closedAt := s.now()
	closed := domain.ClosedTicket{
		ID:           s.freshArchiveID(),
		ChannelID:    channelID,
		Requester:    ticket.Requester,
		Category:     ticket.Category,
		Priority:     ticket.Category.Priority(),
		CreatedAt:    ticket.CreatedAt,
		ClosedAt:     closedAt,
		Duration:     domain.FormatDuration(closedAt.Sub(ticket.CreatedAt)),
		ClosedBy:     staff,
		Satisfaction: defaultSatisfaction,
		Reason:       reason,
	}

	if err := s.collections.Archive.Append(closed); err != nil {
		return domain.ClosedTicket{}, err
	}
	transcript := s.collections.Transcripts.Rekey(channelID, closed.ID)

	s.publish(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: channelID,
		Payload: events.TicketClosedPayload{
			Ticket:     closed,
			Transcript: transcript,
		},
	})

	s.scheduleTeardown(channelID, closed)
	return closed, nil
}

// Reconcile drops registry entries whose channel vanished or moved out of
// the ticket container. Runs once at startup; calling it again with no
// external change removes nothing.
func (s *TicketService) Reconcile(ctx context.Context) []string {
	removed := s.collections.Tickets.Reconcile(ctx, s.channels.ChannelExists)
	if len(removed) > 0 {
		s.logger.Info("reconciled orphan tickets", zap.Strings("requesters", removed))
		s.publish(ctx, events.Event{
			Type:    events.EventTicketReconciled,
			Payload: events.TicketReconciledPayload{RemovedRequesters: removed},
		})
	}
	return removed
}

// scheduleTeardown runs the two delayed side effects on independent timers:
// the closing notice after a short delay, the channel deletion a second
// delay after the notice. Both are best effort; a channel already gone when
// the deletion fires is logged and treated as success.
func (s *TicketService) scheduleTeardown(channelID string, closed domain.ClosedTicket) {
	time.AfterFunc(s.noticeDelay, func() {
		ctx := context.Background()
		if err := s.channels.PostClosingNotice(ctx, channelID, closed); err != nil {
			s.logger.Warn("closing notice failed",
				zap.String("channel_id", channelID), zap.Error(err))
		}
		time.AfterFunc(s.deleteDelay, func() {
			if err := s.channels.DeleteChannel(context.Background(), channelID); err != nil {
				s.logger.Info("ticket channel already gone",
					zap.String("channel_id", channelID), zap.Error(err))
			}
		})
	})
}

func (s *TicketService) freshArchiveID() string {
	for {
		id := "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		if _, exists := s.collections.Archive.Get(id); !exists {
			return id
		}
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
