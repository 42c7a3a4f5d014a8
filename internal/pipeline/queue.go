package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/discochess/pgn2data/internal/moves"
)

// ErrQueueClosed is returned by Get once the queue is closed and drained.
var ErrQueueClosed = errors.New("pipeline: queue closed")

// Queue is a FIFO of move tasks between one producer and one consumer. Put
// must not be called after Close.
type Queue interface {
	Put(ctx context.Context, t moves.Task) error
	Get(ctx context.Context) (moves.Task, error)
	Close()
	Len() int
}

// NewQueue returns a queue holding at most size tasks, or an unbounded one
// when size is 0.
func NewQueue(size int) Queue {
	if size > 0 {
		return &boundedQueue{ch: make(chan moves.Task, size)}
	}
	q := &unboundedQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// boundedQueue blocks Put while full.
type boundedQueue struct {
	ch   chan moves.Task
	once sync.Once
}

func (q *boundedQueue) Put(ctx context.Context, t moves.Task) error {
	select {
	case q.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *boundedQueue) Get(ctx context.Context) (moves.Task, error) {
	select {
	case t, ok := <-q.ch:
		if !ok {
			return moves.Task{}, ErrQueueClosed
		}
		return t, nil
	case <-ctx.Done():
		return moves.Task{}, ctx.Err()
	}
}

func (q *boundedQueue) Close() {
	q.once.Do(func() { close(q.ch) })
}

func (q *boundedQueue) Len() int {
	return len(q.ch)
}

// unboundedQueue never blocks Put.
type unboundedQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []moves.Task
	closed bool
}

func (q *unboundedQueue) Put(ctx context.Context, t moves.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	q.cond.Signal()
	return nil
}

func (q *unboundedQueue) Get(ctx context.Context) (moves.Task, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if err := ctx.Err(); err != nil {
			return moves.Task{}, err
		}
		if len(q.tasks) > 0 {
			t := q.tasks[0]
			q.tasks[0] = moves.Task{}
			q.tasks = q.tasks[1:]
			return t, nil
		}
		if q.closed {
			return moves.Task{}, ErrQueueClosed
		}
		q.cond.Wait()
	}
}

func (q *unboundedQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *unboundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
