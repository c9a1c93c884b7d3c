// Package runtime holds the concurrent core of the chat server: the shared
// registries, the command queue with its single dispatcher, the broadcast
// engine and the orchestration of their lifecycle.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"schat/contract"
	"schat/domain"
)

// Orchestrator wires the registry, the command queue and its dispatcher, the
// broadcaster and the supervised background workers together. Session
// handlers talk to it through services.ChatService.
type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	defaultRoom string
	supervisor  contract.ISupervisor
	registry    *Registry
	queue       *CommandQueue
	broadcaster *Broadcaster
	workers     []contract.Worker
	started     bool
	done        chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	queue *CommandQueue, broadcaster *Broadcaster, defaultRoom string) *Orchestrator {
	return &Orchestrator{
		log:         log,
		defaultRoom: defaultRoom,
		supervisor:  supervisor,
		registry:    registry,
		queue:       queue,
		broadcaster: broadcaster,
		done:        make(chan struct{}),
	}
}

// Add registers background workers started alongside the dispatcher.
func (o *Orchestrator) Add(workers ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, workers...)
}

// Start queues the creation of the default room as the very first command,
// then runs the dispatcher and every added worker under supervision.
// It does not block.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return fmt.Errorf("orchestrator already started")
	}
	if err := domain.ValidateRoomName(o.defaultRoom); err != nil {
		return err
	}
	if err := o.queue.Push(domain.Command{Op: domain.CreateRoom, Arg: o.defaultRoom}); err != nil {
		return fmt.Errorf("queueing default room: %w", err)
	}

	o.supervisor.Add(NewDispatcher(o.log, o.queue, o.registry))
	o.supervisor.Add(o.workers...)
	o.started = true

	o.log.Info("Starting dispatcher and supervised workers", "workers", len(o.workers)+1, "room", o.defaultRoom)
	go func() {
		defer close(o.done)
		o.supervisor.Run(ctx)
	}()
	return nil
}

func (o *Orchestrator) DefaultRoom() string {
	return o.defaultRoom
}

// Join claims the username and queues the subscription to the default room,
// so that the first membership change of a session goes through the same
// serialization as every user-issued mutation.
func (o *Orchestrator) Join(session *domain.Session, name string) error {
	if err := o.registry.Claim(session, name); err != nil {
		return err
	}
	if err := o.Submit(domain.Command{Op: domain.Subscribe, Session: session, Arg: o.defaultRoom}); err != nil {
		o.registry.Release(session)
		return err
	}
	return nil
}

// Submit enqueues a topology command for the dispatcher.
func (o *Orchestrator) Submit(cmd domain.Command) error {
	return o.queue.Push(cmd)
}

func (o *Orchestrator) Post(ctx context.Context, sender *domain.Session, text string) int {
	return o.broadcaster.Broadcast(ctx, sender, text)
}

func (o *Orchestrator) Users() []string {
	return o.registry.Usernames()
}

// Leave unsubscribes the session from every room and forgets it.
func (o *Orchestrator) Leave(session *domain.Session) bool {
	return o.registry.Release(session)
}

func (o *Orchestrator) Stats() domain.Stats {
	sessions, rooms := o.registry.Counts()
	return domain.Stats{Sessions: sessions, Rooms: rooms, Queued: o.queue.Len()}
}

// Stop cancels the supervised workers, closes the command queue and waits
// for the dispatcher to return.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
	o.queue.Close()

	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if started {
		<-o.done
	}
}

// Shutdown is the teardown run after an interrupt: stop the dispatcher, send
// the termination sentinel to every registered session and close it, drop
// every room, then close the given resources (the listener).
//
// It takes the registry lock only to drain the maps and does not wait for
// handler goroutines: one may still be writing to a session being closed.
// That race is accepted because the process exits right after.
func (o *Orchestrator) Shutdown(closers ...io.Closer) error {
	o.Stop()

	sessions := o.registry.Drain()
	for _, session := range sessions {
		if err := session.Terminate(); err != nil {
			o.log.Debug("Termination not delivered", "user", session.Name, "error", err)
		}
	}
	o.log.Info("Sessions terminated", "count", len(sessions))

	var firstErr error
	for _, closer := range closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
