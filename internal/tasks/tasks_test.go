package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskReturnsResult(t *testing.T) {
	scope := NewScope(context.Background(), "test", zap.NewNop())
	defer scope.Close()

	boom := errors.New("boom")
	task := scope.Go("fail", func(context.Context) error { return boom })

	require.ErrorIs(t, task.Wait(context.Background()), boom)
	assert.ErrorIs(t, task.Err(), boom)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "fail", task.Name)
}

func TestCloseCancelsRunningTasks(t *testing.T) {
	scope := NewScope(context.Background(), "view", nil)

	started := make(chan struct{})
	task := scope.Go("blocked", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	assert.Equal(t, 1, scope.Pending())

	scope.Close()
	scope.Wait()

	assert.ErrorIs(t, task.Err(), context.Canceled)
	assert.Equal(t, 0, scope.Pending())
	assert.ErrorIs(t, scope.Context().Err(), context.Canceled)
}

func TestGoOnClosedScope(t *testing.T) {
	scope := NewScope(context.Background(), "closed", nil)
	scope.Close()

	var ran atomic.Bool
	task := scope.Go("late", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	assert.ErrorIs(t, task.Wait(context.Background()), ErrScopeClosed)
	assert.False(t, ran.Load())
}

func TestTaskCancel(t *testing.T) {
	scope := NewScope(context.Background(), "single", nil)
	defer scope.Close()

	other := scope.Go("other", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	})

	task := scope.Go("cancel me", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	task.Cancel()

	assert.ErrorIs(t, task.Wait(context.Background()), context.Canceled)
	assert.NoError(t, other.Wait(context.Background()), "cancelling one task leaves its siblings alone")
}

func TestWaitHonoursContext(t *testing.T) {
	scope := NewScope(context.Background(), "slow", nil)
	defer scope.Close()

	task := scope.Go("forever", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)
	assert.Nil(t, task.Err(), "result is not available before the task returns")
}

func TestGroup(t *testing.T) {
	var calls atomic.Int32
	err := Group(context.Background(),
		func(context.Context) error { calls.Add(1); return nil },
		func(context.Context) error { calls.Add(1); return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	boom := errors.New("boom")
	err = Group(context.Background(),
		func(context.Context) error { return boom },
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
	)
	assert.ErrorIs(t, err, boom)
}

func TestAllRunsEveryFunction(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	var finished atomic.Bool
	err := All(context.Background(),
		func(context.Context) error { return first },
		func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			if ctx.Err() == nil {
				finished.Store(true)
			}
			return second
		},
	)

	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.True(t, finished.Load(), "a failure must not cancel the other functions")
	assert.NoError(t, All(context.Background()))
}
