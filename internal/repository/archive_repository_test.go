package repository

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
)

func newTestArchive(t *testing.T) *ArchiveRepository {
	t.Helper()
	store, err := persistence.NewSnapshotStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	archive, err := NewArchiveRepository(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewArchiveRepository: %v", err)
	}
	return archive
}

func closedTicket(id string, closedAt time.Time) domain.ClosedTicket {
	return domain.ClosedTicket{
		ID:        id,
		ChannelID: "chan-" + id,
		Requester: domain.UserRef{ID: "user-1", Name: "alice"},
		Category:  domain.CategorySuggestion,
		Priority:  domain.TicketPriorityLow,
		CreatedAt: closedAt.Add(-time.Hour),
		ClosedAt:  closedAt,
		Duration:  "1h 0m",
		ClosedBy:  domain.StaffRef{ID: "staff-1", Name: "carol"},
		Reason:    "resolved",
	}
}

func TestArchiveAppendRejectsReusedID(t *testing.T) {
	archive := newTestArchive(t)

	if err := archive.Append(closedTicket("TCK-1", time.Now())); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := archive.Append(closedTicket("TCK-1", time.Now())); err == nil {
		t.Error("Append accepted a reused archival id")
	}
	if archive.Len() != 1 {
		t.Errorf("archive holds %d records, want 1", archive.Len())
	}
}

func TestArchiveUpsertIsIdempotent(t *testing.T) {
	archive := newTestArchive(t)

	first := closedTicket("TCK-1", time.Now())
	archive.Upsert(first)

	second := first
	second.Reason = "updated reason"
	archive.Upsert(second)

	if archive.Len() != 1 {
		t.Fatalf("archive holds %d records after re-upsert, want 1", archive.Len())
	}
	got, ok := archive.Get("TCK-1")
	if !ok {
		t.Fatal("record missing after upsert")
	}
	if got.Reason != "updated reason" {
		t.Errorf("reason = %s, want the overwritten value", got.Reason)
	}
}

func TestArchiveListNewestFirst(t *testing.T) {
	archive := newTestArchive(t)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	archive.Upsert(closedTicket("TCK-old", base))
	archive.Upsert(closedTicket("TCK-new", base.Add(2*time.Hour)))
	archive.Upsert(closedTicket("TCK-mid", base.Add(time.Hour)))

	list := archive.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d records, want 3", len(list))
	}
	want := []string{"TCK-new", "TCK-mid", "TCK-old"}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("List[%d].ID = %s, want %s", i, list[i].ID, id)
		}
	}
}
