package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
)

// Recorder appends channel messages to the per-channel transcript. Messages
// authored by the bot's own identity are never recorded, and only channels
// with a live ticket are captured.
type Recorder struct {
	tickets     *repository.TicketRegistry
	transcripts *repository.TranscriptRepository
	dispatcher  events.Dispatcher
	selfID      string
}

// NewRecorder constructs the recorder. selfID is the bot's own user id.
func NewRecorder(tickets *repository.TicketRegistry, transcripts *repository.TranscriptRepository, dispatcher events.Dispatcher, selfID string) *Recorder {
	return &Recorder{tickets: tickets, transcripts: transcripts, dispatcher: dispatcher, selfID: selfID}
}

// Record normalizes and appends one message, persisting immediately. The
// entry's staff flag must be derived by the caller from role membership at
// capture time. Each captured entry is announced on the dispatcher.
func (r *Recorder) Record(channelID string, entry domain.TranscriptEntry) {
	if entry.AuthorID == r.selfID {
		return
	}
	if _, ok := r.tickets.FindByChannel(channelID); !ok {
		return
	}
	r.transcripts.Append(channelID, entry)

	if r.dispatcher != nil {
		_ = r.dispatcher.Publish(context.Background(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTranscriptRecorded,
			ChannelID: channelID,
			Timestamp: entry.Timestamp,
			Payload:   events.TranscriptRecordedPayload{Entry: entry},
		})
	}
}
