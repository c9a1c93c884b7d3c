package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"schat/contract"
	"schat/domain"
	"schat/domain/event"
	"schat/moderation"

	"github.com/google/uuid"
)

// Broadcaster fans a message out to every member of every room the sender
// belongs to. It runs on the sender's handler goroutine, concurrently with the
// dispatcher: a message is not ordered against queued topology commands.
type Broadcaster struct {
	log       *slog.Logger
	registry  *Registry
	moderator *moderation.Moderator
	sinks     []contract.EventSink
}

func NewBroadcaster(log *slog.Logger, registry *Registry, moderator *moderation.Moderator, sinks ...contract.EventSink) *Broadcaster {
	return &Broadcaster{
		log:       log,
		registry:  registry,
		moderator: moderator,
		sinks:     sinks,
	}
}

// Broadcast delivers "<sender>@<room>: <text>" to each recipient with a single
// write, holding only that recipient's lock. A failed write is logged and the
// remaining recipients are still served. A member sharing two rooms with the
// sender gets one copy per room. It returns the number of successful writes.
func (b *Broadcaster) Broadcast(ctx context.Context, sender *domain.Session, text string) int {
	content, censored := b.moderator.Censor(text)
	if len(censored) > 0 {
		b.log.Info("Message censored", "user", sender.Name, "words", len(censored))
	}

	deliveries := b.registry.Recipients(sender)
	lines := make(map[string][]byte)
	perRoom := make(map[string]int)
	var rooms []string
	delivered := 0

	for _, d := range deliveries {
		line, ok := lines[d.Room]
		if !ok {
			line = domain.FormatBroadcast(sender.Name, d.Room, content)
			lines[d.Room] = line
			rooms = append(rooms, d.Room)
		}
		if err := d.Session.Send(line); err != nil {
			b.log.Error("Delivery failed", "from", sender.Name, "to", d.Session.Name, "room", d.Room, "error", err)
			continue
		}
		perRoom[d.Room]++
		delivered++
	}

	at := time.Now().UTC()
	for _, room := range rooms {
		b.publish(ctx, event.MessagePosted{
			ID:         uuid.New(),
			Room:       room,
			Author:     sender.Name,
			Content:    content,
			Recipients: perRoom[room],
			At:         at,
		})
	}
	return delivered
}

func (b *Broadcaster) publish(ctx context.Context, evt event.MessagePosted) {
	for _, sink := range b.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			b.log.Warn("Sink rejected event", "sink", fmt.Sprintf("%T", sink), "room", evt.Room, "error", err)
		}
	}
}
