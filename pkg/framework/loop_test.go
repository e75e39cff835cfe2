package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func newTestLoop(times ...time.Time) *Loop {
	l := NewLoop()
	l.Clock = func() time.Time {
		now := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return now
	}
	return l
}

func TestRequestFrameFiresOnce(t *testing.T) {
	base := time.Unix(1000, 0)
	l := newTestLoop(base, base.Add(time.Second), base.Add(2*time.Second))
	var fired []time.Time
	h := l.RequestFrame(func(now time.Time) { fired = append(fired, now) })
	require.True(t, h.Pending())

	l.runIteration(context.Background())
	require.Equal(t, []time.Time{base}, fired)
	require.False(t, h.Pending())
	require.False(t, h.Cancelled())

	l.runIteration(context.Background())
	require.Len(t, fired, 1)
}

func TestRequestFrameCancel(t *testing.T) {
	l := newTestLoop(time.Unix(1000, 0))
	var fired int
	h := l.RequestFrame(func(time.Time) { fired++ })
	h.Cancel()
	require.True(t, h.Cancelled())
	l.runIteration(context.Background())
	require.Zero(t, fired)

	var nilHandle *FrameHandle
	nilHandle.Cancel()
	require.False(t, nilHandle.Pending())
}

func TestFrameRearmRunsNextIteration(t *testing.T) {
	base := time.Unix(1000, 0)
	l := newTestLoop(base, base.Add(16*time.Millisecond), base.Add(32*time.Millisecond))
	var fired []time.Time
	var frame FrameFunc
	frame = func(now time.Time) {
		fired = append(fired, now)
		l.RequestFrame(frame)
	}
	l.RequestFrame(frame)

	l.runIteration(context.Background())
	require.Len(t, fired, 1)
	l.runIteration(context.Background())
	l.runIteration(context.Background())
	require.Equal(t, []time.Time{base, base.Add(16 * time.Millisecond), base.Add(32 * time.Millisecond)}, fired)
}

func TestMessagesVisibleToControllers(t *testing.T) {
	l := newTestLoop(time.Unix(1000, 0))
	var seen []int
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if m, ok := mctx.CurrentMessage().(*testMsg); ok {
				mctx.MessageTaken()
				seen = append(seen, m.val)
			}
		}))
		return nil
	}))
	l.PostMessage(&testMsg{val: 1})
	l.PostMessage(&testMsg{val: 2})
	l.runIteration(context.Background())
	require.Equal(t, []int{1, 2}, seen)

	l.runIteration(context.Background())
	require.Equal(t, []int{1, 2}, seen)
}

func TestUntakenMessagesStayForLaterLevels(t *testing.T) {
	l := newTestLoop(time.Unix(1000, 0))
	var early, late []int
	take := func(dst *[]int, even bool) ControlFunc {
		return func(cc ControlContext) error {
			cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
				if m, ok := mctx.CurrentMessage().(*testMsg); ok && (m.val%2 == 0) == even {
					mctx.MessageTaken()
					*dst = append(*dst, m.val)
				}
			}))
			return nil
		}
	}
	l.AddController(PrLvControl, take(&early, true))
	l.AddController(PrLvIdle, take(&late, false))
	for i := 1; i <= 5; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.runIteration(context.Background())
	require.Equal(t, []int{2, 4}, early)
	require.Equal(t, []int{1, 3, 5}, late)
}

func TestFrameRequestedAtLowerLevelRunsSameIteration(t *testing.T) {
	base := time.Unix(1000, 0)
	l := newTestLoop(base, base.Add(time.Second))
	var fired []time.Time
	requested := false
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		if !requested {
			requested = true
			cc.RequestFrame(func(now time.Time) { fired = append(fired, now) })
		}
		return nil
	}))
	l.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		if len(fired) == 1 {
			cc.RequestFrame(func(now time.Time) { fired = append(fired, now) })
		}
		return nil
	}))
	l.runIteration(context.Background())
	require.Equal(t, []time.Time{base}, fired)
	l.runIteration(context.Background())
	require.Equal(t, []time.Time{base, base.Add(time.Second)}, fired)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	err := errs.Add(context.Canceled).Aggregate()
	require.Equal(t, context.Canceled.Error(), err.Error())
	err = errs.Add(context.DeadlineExceeded).Aggregate()
	require.Contains(t, err.Error(), "2 errors:")
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.True(t, errors.Is(err, context.Canceled))
}

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerNamesErrors(t *testing.T) {
	boom := errors.New("boom")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(
		NamedRun("feed", runFunc(func(context.Context) error { return boom })),
		NamedRun("http-api", runFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
	)
	cancel()
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, boom))
	require.Equal(t, "feed: boom", err.Error())
	require.NoError(t, NewRunner().Wait())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	cancel()
	err := RunWithContextCancel(ctx, func() { close(stop) }, func() error {
		<-stop
		return nil
	})
	require.Equal(t, context.Canceled, err)

	err = RunWithContextCancel(context.Background(), nil, func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
}
