package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no room left.
var ErrQueueFull = errors.New("queue full")

// Task wraps a payload with its delivery bookkeeping.
type Task[T any] struct {
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes one payload.
type Handler[T any] func(context.Context, T) error

// Config sizes the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue dispatches payloads to a fixed set of goroutines with bounded retries.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config
	logger  *zap.Logger

	tasks   chan Task[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	pending sync.WaitGroup
	mu       sync.Mutex
	started  bool
	stopping bool
}

// New builds a queue. Start must be called before anything is enqueued.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
		tasks:   make(chan Task[T], cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Drain waits until every accepted task has been handled or given up on.
func (q *Queue[T]) Drain() {
	q.pending.Wait()
}

// Stop drains outstanding work, then stops the workers.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started || q.stopping {
		q.mu.Unlock()
		return
	}
	q.stopping = true
	q.mu.Unlock()

	q.pending.Wait()

	q.mu.Lock()
	q.cancel()
	q.started = false
	q.stopping = false
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// TryEnqueue hands a payload to the workers without blocking.
func (q *Queue[T]) TryEnqueue(payload T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if q.stopping {
		return fmt.Errorf("queue %s stopping", q.name)
	}
	q.pending.Add(1)
	select {
	case q.tasks <- Task[T]{Payload: payload, Enqueued: time.Now().UTC()}:
		return nil
	default:
		q.pending.Done()
		return ErrQueueFull
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.run(task)
		}
	}
}

func (q *Queue[T]) run(task Task[T]) {
	for {
		err := q.handler(q.ctx, task.Payload)
		if err == nil {
			q.pending.Done()
			return
		}
		task.Attempt++
		if task.Attempt > q.cfg.MaxRetries {
			q.logger.Error("task exceeded retries", zap.String("queue", q.name), zap.Int("attempts", task.Attempt), zap.Error(err))
			q.pending.Done()
			return
		}
		q.logger.Warn("task failed, retrying", zap.String("queue", q.name), zap.Int("attempt", task.Attempt), zap.Error(err))

		timer := time.NewTimer(q.cfg.RetryDelay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			q.pending.Done()
			return
		case <-timer.C:
		}
	}
}
