package repository

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

func newTestRegistry(t *testing.T) *TicketRegistry {
	t.Helper()
	store, err := persistence.NewSnapshotStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	registry, err := NewTicketRegistry(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTicketRegistry: %v", err)
	}
	return registry
}

func openTicket(requesterID, channelID string) domain.Ticket {
	return domain.Ticket{
		ChannelID: channelID,
		Category:  domain.CategoryGeneralQuestion,
		CreatedAt: time.Now(),
		Requester: domain.UserRef{ID: requesterID, Name: requesterID},
	}
}

func TestRegistryRejectsSecondTicketPerRequester(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	err := registry.Open(openTicket("alice", "chan-2"))
	if err == nil {
		t.Fatal("second Open for the same requester succeeded")
	}
	if !apperrors.IsCode(err, "DUPLICATE_TICKET") {
		t.Errorf("second Open error code = %v, want DUPLICATE_TICKET", err)
	}
	if registry.Len() != 1 {
		t.Errorf("registry holds %d tickets, want 1", registry.Len())
	}
}

func TestRegistryAllowsReopenAfterClose(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := registry.Close("chan-1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := registry.Open(openTicket("alice", "chan-2")); err != nil {
		t.Errorf("reopen after close failed: %v", err)
	}
}

func TestRegistryFindByChannel(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := registry.Open(openTicket("bob", "chan-2")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	ticket, ok := registry.FindByChannel("chan-2")
	if !ok {
		t.Fatal("FindByChannel missed an open ticket")
	}
	if ticket.Requester.ID != "bob" {
		t.Errorf("FindByChannel returned requester %s, want bob", ticket.Requester.ID)
	}

	if _, ok := registry.FindByChannel("chan-99"); ok {
		t.Error("FindByChannel matched an unknown channel")
	}

	if _, err := registry.Close("chan-2"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := registry.FindByChannel("chan-2"); ok {
		t.Error("FindByChannel matched a closed ticket's channel")
	}
}

func TestRegistryAssumeOverwritesAndReturnsPrevious(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	ticket, previous, err := registry.Assume("chan-1", domain.StaffRef{ID: "staff-1", Name: "carol"})
	if err != nil {
		t.Fatalf("first Assume: %v", err)
	}
	if previous != nil {
		t.Errorf("first Assume reported previous assignee %+v", previous)
	}
	if ticket.Assignee == nil || ticket.Assignee.ID != "staff-1" {
		t.Errorf("assignee after first Assume = %+v", ticket.Assignee)
	}

	ticket, previous, err = registry.Assume("chan-1", domain.StaffRef{ID: "staff-2", Name: "dave"})
	if err != nil {
		t.Fatalf("second Assume: %v", err)
	}
	if previous == nil || previous.ID != "staff-1" {
		t.Errorf("second Assume previous = %+v, want staff-1", previous)
	}
	if ticket.Assignee == nil || ticket.Assignee.ID != "staff-2" {
		t.Errorf("assignee after second Assume = %+v, want staff-2", ticket.Assignee)
	}

	if _, _, err := registry.Assume("chan-99", domain.StaffRef{ID: "staff-1"}); err == nil {
		t.Error("Assume on an unknown channel succeeded")
	}
}

func TestRegistryCloseIsSinglePointOfTruth(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	ticket, err := registry.Close("chan-1")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ticket.Requester.ID != "alice" {
		t.Errorf("Close returned requester %s, want alice", ticket.Requester.ID)
	}

	if _, err := registry.Close("chan-1"); err == nil {
		t.Error("second Close of the same channel succeeded")
	} else if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Errorf("second Close error code = %v, want NOT_FOUND", err)
	}
}

func TestRegistryReconcileDropsOnlyStaleChannels(t *testing.T) {
	registry := newTestRegistry(t)

	for _, tc := range []struct{ requester, channel string }{
		{"alice", "chan-1"},
		{"bob", "chan-2"},
		{"carol", "chan-3"},
	} {
		if err := registry.Open(openTicket(tc.requester, tc.channel)); err != nil {
			t.Fatalf("Open(%s): %v", tc.requester, err)
		}
	}

	valid := map[string]bool{"chan-1": true, "chan-3": true}
	removed := registry.Reconcile(context.Background(), func(_ context.Context, channelID string) bool {
		return valid[channelID]
	})
	if len(removed) != 1 || removed[0] != "bob" {
		t.Errorf("Reconcile removed %v, want [bob]", removed)
	}
	if registry.Len() != 2 {
		t.Errorf("registry holds %d tickets after reconcile, want 2", registry.Len())
	}

	removed = registry.Reconcile(context.Background(), func(_ context.Context, channelID string) bool {
		return valid[channelID]
	})
	if len(removed) != 0 {
		t.Errorf("second reconcile removed %v, want nothing", removed)
	}
}

func TestRegistrySurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := persistence.NewSnapshotStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	registry, err := NewTicketRegistry(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTicketRegistry: %v", err)
	}
	if err := registry.Open(openTicket("alice", "chan-1")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	reopened, err := NewTicketRegistry(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTicketRegistry after restart: %v", err)
	}
	ticket, ok := reopened.Get("alice")
	if !ok {
		t.Fatal("ticket lost across restart")
	}
	if ticket.ChannelID != "chan-1" {
		t.Errorf("restored channel id = %s, want chan-1", ticket.ChannelID)
	}
}
