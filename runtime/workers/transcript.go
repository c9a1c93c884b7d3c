package workers

import (
	"context"
	"log/slog"

	"schat/domain/event"
	"schat/repositories"

	"github.com/abadojack/whatlanggo"
)

// TranscriptWorker writes every delivered room message to the journal,
// tagged with the detected language of its content.
type TranscriptWorker struct {
	log        *slog.Logger
	repository repositories.ITranscriptRepository
	events     <-chan event.MessagePosted
}

func NewTranscriptWorker(log *slog.Logger, repository repositories.ITranscriptRepository,
	events <-chan event.MessagePosted) *TranscriptWorker {
	return &TranscriptWorker{log: log, repository: repository, events: events}
}

func (w *TranscriptWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			w.log.Debug("Context done, stopping transcript worker")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.store(evt)
		}
	}
}

// flush stores whatever is still buffered without waiting for more.
func (w *TranscriptWorker) flush() {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return
			}
			w.store(evt)
		default:
			return
		}
	}
}

func (w *TranscriptWorker) store(evt event.MessagePosted) {
	if err := w.repository.Store(toTranscriptEntry(evt)); err != nil {
		w.log.Error("Transcript entry not stored", "room", evt.Room, "author", evt.Author, "error", err)
	}
}

func toTranscriptEntry(evt event.MessagePosted) repositories.TranscriptEntry {
	info := whatlanggo.Detect(evt.Content)
	return repositories.TranscriptEntry{
		ID:         evt.ID,
		Room:       evt.Room,
		Author:     evt.Author,
		Content:    evt.Content,
		Lang:       info.Lang.Iso6391(),
		Recipients: evt.Recipients,
		At:         evt.At,
	}
}
