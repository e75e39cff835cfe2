package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Loop runs controllers in iterations. An iteration is started by the
// ticker or by TriggerNext, controllers run by priority level and see
// the messages posted before the iteration started.
type Loop struct {
	Interval time.Duration
	// Clock provides iteration time, time.Now if nil.
	Clock func() time.Time

	levels  [PriorityLevels][]Controller
	runners []Runnable

	lock   sync.Mutex
	posted []Message
	frames []frameRequest

	wakeUpCh chan struct{}
}

// LoopAdder adds a component with its controllers and runnables.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKey struct{}

// LoopCtlFrom gets the LoopControl a Runnable is started with.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey{}).(LoopControl)
}

// DefaultInterval is the iteration interval when not specified.
const DefaultInterval = 100 * time.Millisecond

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return NewLoopWithInterval(DefaultInterval)
}

// NewLoopWithInterval creates a Loop iterating at specified interval.
func NewLoopWithInterval(interval time.Duration) *Loop {
	return &Loop{Interval: interval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// also implementing Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.levels[priorityLevel] = append(l.levels[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background runners started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. Runners get a context carrying the loop's
// LoopControl and are waited for before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey{}, LoopControl(l)))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		start := time.Now()
		l.runIteration(ctx)
		if elapsed := time.Since(start); elapsed > interval {
			glog.V(1).Infof("iteration took %v, over interval %v", elapsed, interval)
		}
	}
}

// RunOrFail runs the loop until interrupted and exits on error.
func (l *Loop) RunOrFail() {
	runner := NewRunner().HandleSignals()
	runner.Go(l)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.posted = append(l.posted, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) now() time.Time {
	if clock := l.Clock; clock != nil {
		return clock()
	}
	return time.Now()
}

func (l *Loop) runIteration(ctx context.Context) {
	iter := &iteration{Loop: l, time: l.now()}
	l.lock.Lock()
	iter.messages, l.posted = l.posted, nil
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey{}, LoopControl(iter))
	for level, ctls := range l.levels {
		iter.level = level
		if level == PrLvFrame {
			l.fireFrames(iter.time)
		}
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error at level %d: %v", level, err)
			}
		}
	}
}

// iteration implements ControlContext and MessageStore. Messages left
// untaken after the last level are dropped.
type iteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	level    int
	messages []Message
}

func (it *iteration) Context() context.Context { return it.ctx }
func (it *iteration) Time() time.Time          { return it.time }
func (it *iteration) PriorityLevel() int       { return it.level }
func (it *iteration) Messages() MessageStore   { return it }

type messageContext struct {
	msg   Message
	taken bool
}

func (c *messageContext) CurrentMessage() Message { return c.msg }
func (c *messageContext) MessageTaken()           { c.taken = true }

func (it *iteration) ProcessMessages(proc MessageProcessor) {
	remains := it.messages[:0]
	for _, msg := range it.messages {
		mc := &messageContext{msg: msg}
		proc.ProcessMessage(mc)
		if !mc.taken {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(it.messages); i++ {
		it.messages[i] = nil
	}
	it.messages = remains
}
