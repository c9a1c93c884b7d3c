package sink

import (
	"context"
	"fmt"
	"log/slog"

	"schat/contract"
	"schat/domain/event"
)

var _ contract.EventSink = (*TranscriptSink)(nil)

// TranscriptSink hands delivered room messages over to the transcript worker.
// It never blocks the broadcasting goroutine: when the channel is full the
// event is dropped and logged.
type TranscriptSink struct {
	events chan<- event.MessagePosted
	log    *slog.Logger
}

func NewTranscriptSink(events chan<- event.MessagePosted, log *slog.Logger) *TranscriptSink {
	return &TranscriptSink{events: events, log: log}
}

func (s *TranscriptSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessagePosted:
		select {
		case s.events <- evt:
		default:
			s.log.Warn("Transcript event dropped, channel full", "room", evt.Room, "author", evt.Author)
		}
		return nil
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
		return nil
	}
}
