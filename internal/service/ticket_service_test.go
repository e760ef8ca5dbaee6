package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// fakeChannels stands in for the messaging platform. Channel ids are handed
// out sequentially and deletions are recorded for teardown assertions.
type fakeChannels struct {
	mu       sync.Mutex
	nextID   int
	existing map[string]bool
	notices  []string
	deleted  []string

	createErr error
	noticeErr error
}

func newFakeChannels() *fakeChannels {
	return &fakeChannels{existing: make(map[string]bool)}
}

func (f *fakeChannels) CreateTicketChannel(_ context.Context, _ domain.UserRef, _ domain.Category) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("chan-%d", f.nextID)
	f.existing[id] = true
	return id, nil
}

func (f *fakeChannels) PostClosingNotice(_ context.Context, channelID string, _ domain.ClosedTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noticeErr != nil {
		return f.noticeErr
	}
	f.notices = append(f.notices, channelID)
	return nil
}

func (f *fakeChannels) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.existing[channelID] {
		return errors.New("unknown channel")
	}
	delete(f.existing, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakeChannels) ChannelExists(_ context.Context, channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[channelID]
}

func (f *fakeChannels) noticeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notices)
}

func (f *fakeChannels) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func newTestService(t *testing.T, channels ChannelAPI, dispatcher events.Dispatcher) (*TicketService, *repository.Collections) {
	t.Helper()
	store, err := persistence.NewSnapshotStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	collections, err := repository.NewCollections(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCollections: %v", err)
	}
	svc := NewTicketService(TicketDependencies{
		Collections: collections,
		Channels:    channels,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
		NoticeDelay: 5 * time.Millisecond,
		DeleteDelay: 5 * time.Millisecond,
	})
	return svc, collections
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpenTicketRejectsSecondForSameRequester(t *testing.T) {
	channels := newFakeChannels()
	svc, _ := newTestService(t, channels, nil)
	ctx := context.Background()
	alice := domain.UserRef{ID: "user-1", Name: "alice"}

	if _, err := svc.OpenTicket(ctx, alice, domain.CategoryGeneralQuestion); err != nil {
		t.Fatalf("first OpenTicket: %v", err)
	}
	_, err := svc.OpenTicket(ctx, alice, domain.CategorySuggestion)
	if !apperrors.IsCode(err, "DUPLICATE_TICKET") {
		t.Errorf("second OpenTicket error = %v, want DUPLICATE_TICKET", err)
	}
	// The duplicate check runs before channel creation.
	if channels.nextID != 1 {
		t.Errorf("platform saw %d channel creations, want 1", channels.nextID)
	}
}

func TestOpenTicketPropagatesChannelCreationFailure(t *testing.T) {
	channels := newFakeChannels()
	channels.createErr = errors.New("missing permission")
	svc, collections := newTestService(t, channels, nil)

	_, err := svc.OpenTicket(context.Background(), domain.UserRef{ID: "user-1", Name: "alice"}, domain.CategorySuggestion)
	if !apperrors.IsCode(err, "EXTERNAL_API_ERROR") {
		t.Errorf("OpenTicket error = %v, want EXTERNAL_API_ERROR", err)
	}
	if collections.Tickets.Len() != 0 {
		t.Error("registry gained an entry despite channel creation failing")
	}
}

func TestFullLifecycleOpenAssumeClose(t *testing.T) {
	channels := newFakeChannels()
	dispatcher := events.NewInMemoryDispatcher()
	svc, collections := newTestService(t, channels, dispatcher)
	ctx := context.Background()

	var closedEvents []events.TicketClosedPayload
	dispatcher.Subscribe(events.EventTicketClosed, func(_ context.Context, event events.Event) error {
		closedEvents = append(closedEvents, event.Payload.(events.TicketClosedPayload))
		return nil
	})

	alice := domain.UserRef{ID: "user-1", Name: "alice"}
	ticket, err := svc.OpenTicket(ctx, alice, domain.CategoryPromotionRequest)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}

	carol := domain.StaffRef{ID: "staff-1", Name: "carol"}
	if _, err := svc.Assume(ctx, ticket.ChannelID, carol); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	for _, entry := range []string{"hello", "looking into it", "thanks"} {
		collections.Transcripts.Append(ticket.ChannelID, domain.TranscriptEntry{
			AuthorID: "user-1", AuthorName: "alice", Content: entry, Timestamp: time.Now(),
		})
	}

	svc.RequestClose(ticket.ChannelID, carol)
	if !svc.AwaitingCloseReason(ticket.ChannelID) {
		t.Error("close not pending after RequestClose")
	}

	closed, err := svc.SubmitCloseReason(ctx, ticket.ChannelID, "", "resolved", carol)
	if err != nil {
		t.Fatalf("SubmitCloseReason: %v", err)
	}

	if closed.Requester.ID != "user-1" {
		t.Errorf("archived requester = %s, want user-1", closed.Requester.ID)
	}
	if closed.Category != domain.CategoryPromotionRequest || closed.Priority != domain.TicketPriorityHigh {
		t.Errorf("archived category/priority = %s/%s", closed.Category, closed.Priority)
	}
	if closed.Reason != "resolved" || closed.ClosedBy.ID != "staff-1" {
		t.Errorf("archived reason/closer = %s/%s", closed.Reason, closed.ClosedBy.ID)
	}
	if collections.Tickets.Len() != 0 {
		t.Error("registry still holds the ticket after closure")
	}
	if collections.Archive.Len() != 1 {
		t.Errorf("archive holds %d records, want 1", collections.Archive.Len())
	}
	if svc.AwaitingCloseReason(ticket.ChannelID) {
		t.Error("close still pending after submission")
	}

	// The transcript moved under the archival id, preserving order.
	if remaining := collections.Transcripts.Get(ticket.ChannelID); len(remaining) != 0 {
		t.Errorf("channel transcript still holds %d entries", len(remaining))
	}
	archived := collections.Transcripts.Get(closed.ID)
	if len(archived) != 3 || archived[0].Content != "hello" || archived[2].Content != "thanks" {
		t.Errorf("archived transcript = %+v", archived)
	}

	if len(closedEvents) != 1 {
		t.Fatalf("got %d closed events, want 1", len(closedEvents))
	}
	if len(closedEvents[0].Transcript) != 3 {
		t.Errorf("closed event carries %d transcript entries, want 3", len(closedEvents[0].Transcript))
	}

	waitFor(t, "closing notice", func() bool { return channels.noticeCount() == 1 })
	waitFor(t, "channel deletion", func() bool { return channels.deletedCount() == 1 })
}

func TestSubmitCloseReasonRequiresReason(t *testing.T) {
	channels := newFakeChannels()
	svc, collections := newTestService(t, channels, nil)
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, domain.UserRef{ID: "user-1", Name: "alice"}, domain.CategorySuggestion)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}
	svc.RequestClose(ticket.ChannelID, domain.StaffRef{ID: "staff-1", Name: "carol"})

	_, err = svc.SubmitCloseReason(ctx, ticket.ChannelID, "", "   ", domain.StaffRef{ID: "staff-1"})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("blank reason error = %v, want VALIDATION_FAILED", err)
	}
	// The rejection leaves the ticket open and pending.
	if collections.Tickets.Len() != 1 {
		t.Error("blank reason closed the ticket")
	}
}

func TestSubmitCloseReasonDoubleSubmission(t *testing.T) {
	channels := newFakeChannels()
	svc, collections := newTestService(t, channels, nil)
	ctx := context.Background()
	carol := domain.StaffRef{ID: "staff-1", Name: "carol"}

	ticket, err := svc.OpenTicket(ctx, domain.UserRef{ID: "user-1", Name: "alice"}, domain.CategorySuggestion)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}
	svc.RequestClose(ticket.ChannelID, carol)

	if _, err := svc.SubmitCloseReason(ctx, ticket.ChannelID, "", "done", carol); err != nil {
		t.Fatalf("first SubmitCloseReason: %v", err)
	}
	// The channel name no longer parses as a ticket, so the second submission
	// cannot fall back to reconstruction and must fail cleanly.
	_, err = svc.SubmitCloseReason(ctx, ticket.ChannelID, "general", "done again", carol)
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Errorf("second SubmitCloseReason error = %v, want NOT_FOUND", err)
	}
	if collections.Archive.Len() != 1 {
		t.Errorf("archive holds %d records after double submission, want 1", collections.Archive.Len())
	}
}

func TestSubmitCloseReasonReconstructsFromChannelName(t *testing.T) {
	channels := newFakeChannels()
	svc, collections := newTestService(t, channels, nil)
	ctx := context.Background()
	carol := domain.StaffRef{ID: "staff-1", Name: "carol"}

	// No registry entry for this channel: simulates state lost before restart.
	closed, err := svc.SubmitCloseReason(ctx, "chan-lost", "ticket-promo-alice", "cleanup", carol)
	if err != nil {
		t.Fatalf("SubmitCloseReason: %v", err)
	}
	if closed.Requester.ID != domain.ReconstructedRequesterID {
		t.Errorf("reconstructed requester id = %s, want sentinel", closed.Requester.ID)
	}
	if closed.Requester.Name != "alice" {
		t.Errorf("reconstructed requester name = %s, want alice", closed.Requester.Name)
	}
	if closed.Category != domain.CategoryPromotionRequest {
		t.Errorf("reconstructed category = %s, want promotion-request", closed.Category)
	}
	if closed.Duration != "0h 0m" {
		t.Errorf("reconstructed duration = %s, want 0h 0m", closed.Duration)
	}
	if collections.Archive.Len() != 1 {
		t.Error("reconstructed closure was not archived")
	}
}

func TestReconcileRemovesVanishedChannels(t *testing.T) {
	channels := newFakeChannels()
	svc, _ := newTestService(t, channels, nil)
	ctx := context.Background()

	keep, err := svc.OpenTicket(ctx, domain.UserRef{ID: "user-1", Name: "alice"}, domain.CategorySuggestion)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}
	drop, err := svc.OpenTicket(ctx, domain.UserRef{ID: "user-2", Name: "bob"}, domain.CategorySuggestion)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}

	// bob's channel vanishes behind the registry's back.
	channels.mu.Lock()
	delete(channels.existing, drop.ChannelID)
	channels.mu.Unlock()

	removed := svc.Reconcile(ctx)
	if len(removed) != 1 || removed[0] != "user-2" {
		t.Errorf("Reconcile removed %v, want [user-2]", removed)
	}
	if _, ok := svc.FindByChannel(keep.ChannelID); !ok {
		t.Error("reconcile dropped a live ticket")
	}

	if removed := svc.Reconcile(ctx); len(removed) != 0 {
		t.Errorf("second reconcile removed %v, want nothing", removed)
	}
}

func TestTeardownDeletesChannelEvenWhenNoticeFails(t *testing.T) {
	channels := newFakeChannels()
	channels.noticeErr = errors.New("channel not writable")
	svc, _ := newTestService(t, channels, nil)
	ctx := context.Background()
	carol := domain.StaffRef{ID: "staff-1", Name: "carol"}

	ticket, err := svc.OpenTicket(ctx, domain.UserRef{ID: "user-1", Name: "alice"}, domain.CategorySuggestion)
	if err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}
	svc.RequestClose(ticket.ChannelID, carol)
	if _, err := svc.SubmitCloseReason(ctx, ticket.ChannelID, "", "done", carol); err != nil {
		t.Fatalf("SubmitCloseReason: %v", err)
	}

	waitFor(t, "channel deletion", func() bool { return channels.deletedCount() == 1 })
}
