// Package tasks runs network operations as explicit tasks owned by a cancellable scope.
//
// A Scope stands for the lifetime of whatever started the work (a command, a view).
// Closing it cancels every task it still owns.
package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrScopeClosed = errors.New("task scope is closed")

// Task is a single operation running in its own goroutine.
type Task struct {
	ID   string
	Name string

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's result. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel asks the task to stop. The task still has to return on its own.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scope owns tasks and cancels them when closed.
type Scope struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	tasks  map[string]*Task
	wg     sync.WaitGroup
}

func NewScope(parent context.Context, name string, logger *zap.Logger) *Scope {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	return &Scope{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(zap.String("scope", name)),
		tasks:  make(map[string]*Task),
	}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Go starts fn as a task of the scope. On a closed scope the task finishes at once with ErrScopeClosed.
func (s *Scope) Go(name string, fn func(ctx context.Context) error) *Task {
	ctx, cancel := context.WithCancel(s.ctx)
	task := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		task.err = ErrScopeClosed
		close(task.done)
		return task
	}
	s.tasks[task.ID] = task
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug("task started", zap.String("task", name), zap.String("task_id", task.ID))

	go func() {
		defer s.wg.Done()
		defer cancel()

		task.err = fn(ctx)
		close(task.done)

		s.mu.Lock()
		delete(s.tasks, task.ID)
		s.mu.Unlock()

		s.logger.Debug("task finished",
			zap.String("task", name),
			zap.String("task_id", task.ID),
			zap.Error(task.err),
		)
	}()

	return task
}

// Pending returns the number of tasks still running.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels all running tasks and rejects new ones. It does not wait for them.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := len(s.tasks)
	s.mu.Unlock()

	if pending > 0 {
		s.logger.Debug("closing scope with running tasks", zap.Int("pending", pending))
	}
	s.cancel()
}

// Wait blocks until every task started so far has returned.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Group runs fns concurrently and returns the first error. The remaining functions see
// a cancelled context once one of them fails.
func Group(ctx context.Context, fns ...func(ctx context.Context) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(gCtx)
		})
	}
	return g.Wait()
}

// All runs fns concurrently until every one of them has returned and joins their errors.
// A failing function does not cancel the others.
func All(ctx context.Context, fns ...func(ctx context.Context) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
