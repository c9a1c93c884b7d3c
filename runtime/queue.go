package runtime

import (
	"context"
	"sync"

	"schat/domain"
	"schat/errors"
)

// CommandQueue is an unbounded FIFO with a single logical consumer.
// Its mutex protects the queue structure only, never registry state: the
// consumer pops a command, releases the lock, and only then applies it.
type CommandQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []domain.Command
	closed bool
}

func NewCommandQueue() *CommandQueue {
	q := &CommandQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *CommandQueue) Push(cmd domain.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.ErrQueueClosed
	}
	q.items = append(q.items, cmd)
	q.cond.Signal()
	return nil
}

// Pop blocks until a command is available, the queue is closed or ctx is done.
// Commands still queued are handed out before a cancellation is reported.
func (q *CommandQueue) Pop(ctx context.Context) (domain.Command, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.closed {
			return domain.Command{}, errors.ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return domain.Command{}, err
		}
		q.cond.Wait()
	}
	cmd := q.items[0]
	q.items[0] = domain.Command{}
	q.items = q.items[1:]
	return cmd, nil
}

// Close rejects further pushes and wakes the consumer. Pending commands are dropped.
func (q *CommandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
