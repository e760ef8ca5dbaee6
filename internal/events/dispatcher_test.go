package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesAllHandlersDespiteFailure(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var calls []string
	dispatcher.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventTicketOpened, func(context.Context, Event) error {
		calls = append(calls, "wrong-type")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketClosed}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
}
