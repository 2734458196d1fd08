package procfuture

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingScheduler queues tasks until the test runs them.
type recordingScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *recordingScheduler) Schedule(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
}

func (s *recordingScheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks)
}

// runAll runs every queued task, returning the value of the first panic.
func (s *recordingScheduler) runAll() (recovered any) {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, task := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil && recovered == nil {
					recovered = r
				}
			}()

			task()
		}()
	}

	return recovered
}

func settle[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := f.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)

	return v, err
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()

		f := New(func(resolve func(int), _ func(error)) { resolve(42) })

		v, err := settle(t, f)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Nil(t, f.Process())
	})

	t.Run("first settlement wins", func(t *testing.T) {
		t.Parallel()

		f := New(func(resolve func(string), reject func(error)) {
			reject(errors.New("first"))
			resolve("second")
			reject(errors.New("third"))
		})

		_, err := settle(t, f)
		require.EqualError(t, err, "first")
	})

	t.Run("executor panic", func(t *testing.T) {
		t.Parallel()

		f := New(func(func(int), func(error)) { panic("kaboom") })

		_, err := settle(t, f)

		var perr *PanicError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "kaboom", perr.Value)
	})

	t.Run("panic after settlement ignored", func(t *testing.T) {
		t.Parallel()

		f := New(func(resolve func(int), _ func(error)) {
			resolve(1)
			panic("late")
		})

		v, err := settle(t, f)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("nil rejection", func(t *testing.T) {
		t.Parallel()

		f := New(func(_ func(int), reject func(error)) { reject(nil) })

		_, err := settle(t, f)
		require.ErrorIs(t, err, errNilRejection)
	})

	t.Run("pending without executor", func(t *testing.T) {
		t.Parallel()

		f := New[int](nil)
		assert.True(t, f.Pending())

		select {
		case <-f.Settled():
			t.Fatal("future settled without an executor")
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := f.Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFuture_Then(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name        string
		source      func(func(int), func(error))
		onFulfilled func(int) (int, error)
		onRejected  func(error) (int, error)
		want        int
		wantErr     error
	}{
		{
			name:        "transforms value",
			source:      func(resolve func(int), _ func(error)) { resolve(2) },
			onFulfilled: func(v int) (int, error) { return v * 10, nil },
			want:        20,
		},
		{
			name:   "nil handler passes value",
			source: func(resolve func(int), _ func(error)) { resolve(7) },
			want:   7,
		},
		{
			name:    "nil handler passes error",
			source:  func(_ func(int), reject func(error)) { reject(boom) },
			wantErr: boom,
		},
		{
			name:       "recovers rejection",
			source:     func(_ func(int), reject func(error)) { reject(boom) },
			onRejected: func(error) (int, error) { return -1, nil },
			want:       -1,
		},
		{
			name:        "handler error rejects",
			source:      func(resolve func(int), _ func(error)) { resolve(1) },
			onFulfilled: func(int) (int, error) { return 0, boom },
			wantErr:     boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := settle(t, New(tt.source).Then(tt.onFulfilled, tt.onRejected))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	t.Run("handler panic rejects", func(t *testing.T) {
		t.Parallel()

		f := New(func(resolve func(int), _ func(error)) { resolve(1) }).
			Then(func(int) (int, error) { panic("handler") }, nil)

		_, err := settle(t, f)

		var perr *PanicError
		require.ErrorAs(t, err, &perr)
	})
}

func TestFuture_CatchAndFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	source := New(func(_ func(string), reject func(error)) { reject(boom) })

	var seen []error

	var mu sync.Mutex

	handler := func(err error) (string, error) {
		mu.Lock()
		seen = append(seen, err)
		mu.Unlock()

		return "recovered", nil
	}

	caught, err := settle(t, source.Catch(handler))
	require.NoError(t, err)
	assert.Equal(t, "recovered", caught)

	failed, err := settle(t, source.Fail(handler))
	require.NoError(t, err)
	assert.Equal(t, "recovered", failed)

	assert.Equal(t, []error{boom, boom}, seen)
}

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("changes type", func(t *testing.T) {
		t.Parallel()

		f := Chain(New(func(resolve func(int), _ func(error)) { resolve(12) }), func(v int) (string, error) {
			return strconv.Itoa(v), nil
		})

		v, err := settle(t, f)
		require.NoError(t, err)
		assert.Equal(t, "12", v)
	})

	t.Run("propagates rejection", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		called := false

		f := Chain(New(func(_ func(int), reject func(error)) { reject(boom) }), func(int) (string, error) {
			called = true

			return "", nil
		})

		_, err := settle(t, f)
		require.ErrorIs(t, err, boom)
		assert.False(t, called)
	})
}

func TestFuture_Progress(t *testing.T) {
	t.Parallel()

	sched := &recordingScheduler{}
	proc := newMockProcess(99)
	f := newFuture[*Result](proc, sched)

	var got Process

	calls := 0

	same := f.Progress(func(p Process) {
		calls++
		got = p
	})

	assert.Same(t, f, same)
	assert.Equal(t, 0, calls, "progress must not run inline")

	sched.runAll()
	assert.Equal(t, 1, calls)
	assert.Same(t, proc, got)

	// Settlement through the adapter path waits for scheduled callbacks.
	f.Progress(func(Process) { calls++ })

	resolved := make(chan bool, 1)

	go func() { resolved <- f.resolve(&Result{Process: proc}) }()

	assert.Equal(t, 1, sched.len())
	assert.True(t, f.Pending())

	sched.runAll()
	assert.True(t, <-resolved)
	assert.Equal(t, 2, calls)
}

func TestFuture_ProgressDoesNotHoldSettlement(t *testing.T) {
	t.Parallel()

	f := newFuture[*Result](newMockProcess(7), GoScheduler)
	returned := make(chan struct{})

	// The callback blocks until the future settles, which only works if settlement
	// waits for dispatch rather than completion.
	f.Progress(func(Process) {
		<-f.Settled()
		close(returned)
	})

	assert.True(t, f.resolve(&Result{}))

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("progress callback still blocked after settlement")
	}
}

func TestFuture_Done(t *testing.T) {
	t.Parallel()

	t.Run("reraises rejection", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		sched := &recordingScheduler{}

		New(func(_ func(int), reject func(error)) { reject(boom) }, ScheduleOn(sched)).Done()

		require.Eventually(t, func() bool { return sched.len() == 1 }, time.Second, time.Millisecond)

		recovered := sched.runAll()

		unhandled, ok := recovered.(*UnhandledRejectionError)
		require.True(t, ok, "expected *UnhandledRejectionError, got %T", recovered)
		require.ErrorIs(t, unhandled, boom)
	})

	t.Run("success is silent", func(t *testing.T) {
		t.Parallel()

		sched := &recordingScheduler{}
		f := New(func(resolve func(int), _ func(error)) { resolve(1) }, ScheduleOn(sched))
		f.Done()

		_, err := settle(t, f)
		require.NoError(t, err)

		assert.Never(t, func() bool { return sched.len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	})

	t.Run("handled rejection is silent", func(t *testing.T) {
		t.Parallel()

		sched := &recordingScheduler{}
		f := New(func(_ func(int), reject func(error)) { reject(errors.New("boom")) }, ScheduleOn(sched)).
			Catch(func(error) (int, error) { return 0, nil })
		f.Done()

		_, err := settle(t, f)
		require.NoError(t, err)

		assert.Never(t, func() bool { return sched.len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	})
}
