package runtime

import (
	"context"
	stderrors "errors"
	"log/slog"

	"schat/contract"
	"schat/domain"
	"schat/errors"
)

var _ contract.Worker = (*Dispatcher)(nil)

// Dispatcher is the single consumer of the command queue. Every topology
// mutation goes through it, so they are totally ordered.
type Dispatcher struct {
	log      *slog.Logger
	queue    *CommandQueue
	registry *Registry
	handlers map[domain.Opcode]func(domain.Command) error
}

func NewDispatcher(log *slog.Logger, queue *CommandQueue, registry *Registry) *Dispatcher {
	d := &Dispatcher{
		log:      log,
		queue:    queue,
		registry: registry,
	}
	d.handlers = map[domain.Opcode]func(domain.Command) error{
		domain.CreateRoom:          d.createRoom,
		domain.DeleteRoom:          d.deleteRoom,
		domain.Subscribe:           d.subscribe,
		domain.ListSystemRooms:     d.listSystemRooms,
		domain.UnsubscribeAll:      d.unsubscribeAll,
		domain.ListSubscribedRooms: d.listSubscribedRooms,
	}
	return d
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		cmd, err := d.queue.Pop(ctx)
		if err != nil {
			if stderrors.Is(err, errors.ErrQueueClosed) {
				d.log.Debug("Command queue closed, stopping dispatcher")
				return nil
			}
			return err
		}
		d.Apply(cmd)
	}
}

// Apply runs one command. Protocol errors are answered inline on the
// originating session; nothing else about the shared state changes.
func (d *Dispatcher) Apply(cmd domain.Command) {
	handler, ok := d.handlers[cmd.Op]
	if !ok {
		d.notify(cmd, errors.ErrUnknownOpcode)
		return
	}
	if err := handler(cmd); err != nil {
		d.notify(cmd, err)
		return
	}
	d.log.Debug("Command applied", "opcode", cmd.Op, "arg", cmd.Arg, "user", sessionName(cmd.Session))
}

func (d *Dispatcher) createRoom(cmd domain.Command) error {
	return d.registry.CreateRoom(cmd.Arg)
}

func (d *Dispatcher) deleteRoom(cmd domain.Command) error {
	return d.registry.DeleteRoom(cmd.Arg)
}

func (d *Dispatcher) subscribe(cmd domain.Command) error {
	return d.registry.Subscribe(cmd.Session, cmd.Arg)
}

func (d *Dispatcher) unsubscribeAll(cmd domain.Command) error {
	return d.registry.UnsubscribeAll(cmd.Session)
}

func (d *Dispatcher) listSystemRooms(cmd domain.Command) error {
	return d.reply(cmd.Session, domain.FormatRoomListing(domain.SystemRoomsTitle, d.registry.RoomNames()))
}

func (d *Dispatcher) listSubscribedRooms(cmd domain.Command) error {
	rooms, err := d.registry.SubscribedRooms(cmd.Session)
	if err != nil {
		return err
	}
	return d.reply(cmd.Session, domain.FormatRoomListing(domain.SubscribedRoomsTitle, rooms))
}

func (d *Dispatcher) notify(cmd domain.Command, err error) {
	reply, ok := domain.ReplyFor(err)
	switch {
	case ok:
		if stderrors.Is(err, errors.ErrUnknownOpcode) {
			d.log.Warn("Unknown opcode dropped", "opcode", int(cmd.Op), "user", sessionName(cmd.Session))
		} else {
			d.log.Debug("Command rejected", "opcode", cmd.Op, "arg", cmd.Arg, "error", err)
		}
		if sendErr := d.reply(cmd.Session, []byte(reply)); sendErr != nil {
			d.log.Debug("Rejection not delivered", "user", sessionName(cmd.Session), "error", sendErr)
		}
	case stderrors.Is(err, errors.ErrSessionNotFound), stderrors.Is(err, errors.ErrSessionClosed):
		// The session left while its command was queued.
		d.log.Debug("Command dropped for departed session", "opcode", cmd.Op, "user", sessionName(cmd.Session))
	default:
		d.log.Error("Command failed", "opcode", cmd.Op, "arg", cmd.Arg, "error", err)
	}
}

func (d *Dispatcher) reply(session *domain.Session, payload []byte) error {
	if session == nil {
		return nil
	}
	return session.Send(payload)
}

func sessionName(session *domain.Session) string {
	if session == nil {
		return "server"
	}
	return session.Name
}
