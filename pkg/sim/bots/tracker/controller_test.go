package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/feed"
	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/sim"
	"github.com/robotalks/pursuit/pkg/sim/driver"
)

type eventRecorder struct {
	events []*msgs.SimStatus
}

func (r *eventRecorder) SendEvent(_ context.Context, msg fx.Message) error {
	r.events = append(r.events, msg.(*msgs.SimStatus))
	return nil
}

func newTestController() (*Controller, *eventRecorder) {
	reg := &eventRecorder{}
	d := driver.New(driver.Setup{K: 0.1, L: 50, Dt: 0.05}, sim.RectAround(300, 200))
	c := NewController(reg, d, driver.NewPresenter(d))
	ids := 0
	c.NewRunID = func() string {
		ids++
		return "run-" + string(rune('0'+ids))
	}
	return c, reg
}

func requireOK(t *testing.T, reply fx.Message) {
	require.IsType(t, &msgs.CommandOK{}, reply)
}

func requireErr(t *testing.T, reply fx.Message) {
	require.IsType(t, &msgs.CommandErr{}, reply)
}

func TestLifecycleCommands(t *testing.T) {
	c, _ := newTestController()
	requireErr(t, c.HandleCommand(&msgs.SimPause{}))
	requireOK(t, c.HandleCommand(&msgs.SimStart{}))
	require.Equal(t, "run-1", c.RunID())
	requireErr(t, c.HandleCommand(&msgs.SimStart{}))
	requireOK(t, c.HandleCommand(&msgs.SimPause{}))
	requireErr(t, c.HandleCommand(&msgs.SimPause{}))
	requireOK(t, c.HandleCommand(&msgs.SimResume{}))
	require.Equal(t, "running", c.Status().State)
	requireOK(t, c.HandleCommand(&msgs.SimReset{}))
	require.Empty(t, c.RunID())
	require.Equal(t, "idle", c.Status().State)
	requireOK(t, c.HandleCommand(&msgs.SimStart{}))
	require.Equal(t, "run-2", c.RunID())

	require.Nil(t, c.HandleCommand(&msgs.CommandOK{}))
}

func TestTargetCommands(t *testing.T) {
	c, _ := newTestController()
	requireOK(t, c.HandleCommand(&msgs.SimSetTarget{X: 10, Y: 20}))
	require.Equal(t, sim.Pos2D{X: 10, Y: 20}, c.Driver.Target())

	requireErr(t, c.HandleCommand(&msgs.SimSelectSource{Source: "joystick"}))
	requireOK(t, c.HandleCommand(&msgs.SimSelectSource{Source: "feed"}))
	reply := c.HandleCommand(&msgs.SimSetTarget{X: 0, Y: 0})
	requireErr(t, reply)
	require.Equal(t, ErrTargetRejected.Error(), reply.(*msgs.CommandErr).Message)
	require.Equal(t, sim.Pos2D{X: 10, Y: 20}, c.Driver.Target())
}

func TestConfigureCommand(t *testing.T) {
	c, _ := newTestController()
	requireErr(t, c.HandleCommand(&msgs.SimConfigure{}))
	requireErr(t, c.HandleCommand(&msgs.SimConfigure{Setup: &msgs.SimSetup{K: 1, L: 0, Dt: 0.1}}))
	requireOK(t, c.HandleCommand(&msgs.SimConfigure{Setup: &msgs.SimSetup{X0: 5, Y0: 6, Theta0: 30, K: 0.2, L: 40, Dt: 0.02}}))
	status := c.Status()
	require.Equal(t, 5.0, status.X)
	require.Equal(t, 6.0, status.Y)
	require.Equal(t, &msgs.SimSetup{X0: 5, Y0: 6, Theta0: 30, K: 0.2, L: 40, Dt: 0.02}, status.Setup)
}

func TestLogQuery(t *testing.T) {
	c, _ := newTestController()
	requireOK(t, c.HandleCommand(&msgs.SimStart{}))
	base := time.Unix(1000, 0)
	c.Driver.Frame(base)
	c.Driver.Frame(base.Add(200 * time.Millisecond))

	log := c.HandleCommand(&msgs.SimLogQuery{}).(*msgs.SimLog)
	require.Equal(t, "run-1", log.RunID)
	require.Len(t, log.Records, 4)
	require.Equal(t, uint64(4), log.Steps)
	require.Equal(t, c.Driver.SessionLog(), RecordsFromMsg(log.Records))

	log = c.HandleCommand(&msgs.SimLogQuery{Window: true, Limit: 2}).(*msgs.SimLog)
	require.Len(t, log.Records, 2)
	require.Equal(t, uint64(4), log.Steps)
	require.InDelta(t, 0.2, log.Records[1].T, 1e-12)

	status := c.HandleCommand(&msgs.SimStatusQuery{}).(*msgs.SimStatusReply).Status
	require.Equal(t, uint64(4), status.Steps)
	require.InDelta(t, 0.2, status.SimTime, 1e-12)
}

func TestLoopIntegration(t *testing.T) {
	c, reg := newTestController()
	var windows int
	var lastRun string
	c.Charts = chartRecorder(func(runID string, steps uint64, window []driver.StepRecord) {
		windows++
		lastRun = runID
	})
	l := fx.NewLoopWithInterval(5 * time.Millisecond)
	l.Add(c)
	l.Add(&comm.UnsupportedCommands{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	conn := comm.NewLocalConn(l)
	wait := func(cmd fx.Message) (fx.Message, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return l1.WaitResult(ctx, conn.DoCommand(cmd))
	}

	_, err := wait(&msgs.SimSelectSource{Source: "feed"})
	require.NoError(t, err)
	l.PostMessage(&feed.TargetMsg{Target: feed.Target{X: 120, Y: -40}})
	_, err = wait(&msgs.SimStart{})
	require.NoError(t, err)
	_, err = wait(&msgs.CommandOK{})
	require.Error(t, err)

	require.Eventually(t, func() bool {
		reply, err := wait(&msgs.SimStatusQuery{})
		return err == nil && reply.(*msgs.SimStatusReply).Status.Steps >= 10
	}, 5*time.Second, 20*time.Millisecond)

	reply, err := wait(&msgs.SimPause{})
	require.NoError(t, err)
	requireOK(t, reply)
	reply, err = wait(&msgs.SimStatusQuery{})
	require.NoError(t, err)
	status := reply.(*msgs.SimStatusReply).Status
	require.Equal(t, 120.0, status.TargetX)
	require.Equal(t, -40.0, status.TargetY)
	require.Equal(t, "feed", status.Source)

	_, err = wait(&msgs.SimStatusQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, reg.events)
	require.Equal(t, "paused", reg.events[len(reg.events)-1].State)
	require.NotZero(t, windows)
	require.Equal(t, "run-1", lastRun)
}

type chartRecorder func(string, uint64, []driver.StepRecord)

func (f chartRecorder) ChartWindow(runID string, steps uint64, window []driver.StepRecord) {
	f(runID, steps, window)
}
