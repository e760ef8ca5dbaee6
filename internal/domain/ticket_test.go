package domain

import (
	"testing"
	"time"
)

func TestFormatDurationTruncatesToWholeMinutes(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{90 * time.Minute, "1h 30m"},
		{25*time.Hour + 59*time.Minute + 59*time.Second, "25h 59m"},
		{45 * time.Second, "0h 0m"},
		{0, "0h 0m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestFormatDurationNeverNegative(t *testing.T) {
	if got := FormatDuration(-3 * time.Hour); got != "0h 0m" {
		t.Errorf("FormatDuration(-3h) = %s, want 0h 0m", got)
	}
}

func TestParseCategory(t *testing.T) {
	for _, category := range Categories() {
		got, err := ParseCategory(string(category))
		if err != nil {
			t.Fatalf("ParseCategory(%s): %v", category, err)
		}
		if got != category {
			t.Errorf("ParseCategory(%s) = %s", category, got)
		}
	}
	if _, err := ParseCategory("billing"); err == nil {
		t.Error("ParseCategory accepted an unknown category")
	}
}

func TestCategoryPriorityDerivation(t *testing.T) {
	cases := map[Category]TicketPriority{
		CategoryPromotionRequest: TicketPriorityHigh,
		CategoryGeneralQuestion:  TicketPriorityMedium,
		CategorySuggestion:       TicketPriorityLow,
	}
	for category, want := range cases {
		if got := category.Priority(); got != want {
			t.Errorf("%s priority = %s, want %s", category, got, want)
		}
	}
}

func TestCategoryTagRoundTrip(t *testing.T) {
	for _, category := range Categories() {
		if got := CategoryFromTag(category.Tag()); got != category {
			t.Errorf("CategoryFromTag(%s) = %s, want %s", category.Tag(), got, category)
		}
	}
}

func TestChannelName(t *testing.T) {
	got := ChannelName(CategoryPromotionRequest, "Alice Smith")
	if got != "ticket-promo-alice-smith" {
		t.Errorf("ChannelName = %s", got)
	}
}

func TestParseChannelNameRecoversTagAndName(t *testing.T) {
	now := time.Now()
	ticket, err := ParseChannelName("chan-1", "ticket-sugestao-bob", now)
	if err != nil {
		t.Fatalf("ParseChannelName: %v", err)
	}
	if ticket.Category != CategorySuggestion {
		t.Errorf("category = %s, want %s", ticket.Category, CategorySuggestion)
	}
	if ticket.Requester.Name != "bob" {
		t.Errorf("requester name = %s, want bob", ticket.Requester.Name)
	}
	if ticket.Requester.ID != ReconstructedRequesterID {
		t.Errorf("requester id = %s, want sentinel", ticket.Requester.ID)
	}
	if !ticket.Reconstructed() {
		t.Error("reconstructed ticket not marked as such")
	}
}

func TestParseChannelNameLegacyFormat(t *testing.T) {
	ticket, err := ParseChannelName("chan-2", "ticket-carol", time.Now())
	if err != nil {
		t.Fatalf("ParseChannelName: %v", err)
	}
	if ticket.Category != CategoryGeneralQuestion {
		t.Errorf("legacy category = %s, want general-question default", ticket.Category)
	}
}

func TestParseChannelNameRejectsNonTicketChannels(t *testing.T) {
	if _, err := ParseChannelName("chan-3", "general", time.Now()); err == nil {
		t.Error("expected error for non-ticket channel name")
	}
}

func TestClassifyAttachment(t *testing.T) {
	if got := ClassifyAttachment("image/png"); got != AttachmentKindImage {
		t.Errorf("image/png classified as %s", got)
	}
	if got := ClassifyAttachment("application/pdf"); got != AttachmentKindFile {
		t.Errorf("application/pdf classified as %s", got)
	}
	if got := ClassifyAttachment(""); got != AttachmentKindFile {
		t.Errorf("empty content type classified as %s", got)
	}
}
