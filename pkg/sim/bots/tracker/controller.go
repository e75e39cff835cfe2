// Package tracker is the L1 controller running the pursuit simulation.
package tracker

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/pursuit/pkg/feed"
	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/sim/driver"
)

// ControllerType is the L1 controller type of the simulator.
const ControllerType = "pursuit-sim"

// ErrTargetRejected indicates a manual target while the feed is active.
var ErrTargetRejected = errors.New("target rejected: manual input is not the active source")

// WindowCharter consumes the plot window along with the run it belongs to.
type WindowCharter interface {
	ChartWindow(runID string, steps uint64, window []driver.StepRecord)
}

// Controller is the L1 controller.
type Controller struct {
	Registrar l1.Registrar
	Driver    *driver.Driver
	Presenter *driver.Presenter
	Charts    WindowCharter
	NewRunID  func() string

	runID         string
	statusChanged bool
}

// NewController creates the controller.
func NewController(reg l1.Registrar, d *driver.Driver, p *driver.Presenter) *Controller {
	return &Controller{
		Registrar:     reg,
		Driver:        d,
		Presenter:     p,
		NewRunID:      uuid.NewString,
		statusChanged: true,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	if c.Charts != nil && c.Presenter != nil {
		c.Presenter.Charter = driver.ChartFunc(func(window []driver.StepRecord) {
			c.Charts.ChartWindow(c.runID, c.Driver.Steps(), window)
		})
	}
	l.Add(c.Driver)
	if c.Presenter != nil {
		l.Add(c.Presenter)
	}
	l.AddController(fx.PrLvControl, c)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// RunID returns the ID of the current run, empty when idle.
func (c *Controller) RunID() string {
	return c.runID
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *feed.TargetMsg:
			mctx.MessageTaken()
			c.Driver.SetTarget(msg.X, msg.Y, driver.SourceFeed)
		case *l1.CommandMsg:
			if reply := c.HandleCommand(msg.Command.Msg()); reply != nil {
				mctx.MessageTaken()
				msg.Command.Done(reply)
			}
		}
	}))
	return nil
}

// HandleCommand executes a simulator command and returns the reply.
// It returns nil if the command is not a simulator command.
func (c *Controller) HandleCommand(cmd fx.Message) fx.Message {
	switch m := cmd.(type) {
	case *msgs.SimStart:
		return c.reply(c.start())
	case *msgs.SimPause:
		return c.reply(c.transition(c.Driver.Pause()))
	case *msgs.SimResume:
		return c.reply(c.transition(c.Driver.Resume()))
	case *msgs.SimReset:
		c.Driver.Reset()
		c.runID = ""
		return c.reply(c.transition(nil))
	case *msgs.SimSetTarget:
		if !c.Driver.SetTarget(m.X, m.Y, driver.SourceManual) {
			return c.reply(ErrTargetRejected)
		}
		return c.reply(nil)
	case *msgs.SimSelectSource:
		src, err := driver.ParseSource(m.Source)
		if err == nil {
			err = c.transition(c.Driver.SelectSource(src))
		}
		return c.reply(err)
	case *msgs.SimConfigure:
		return c.reply(c.configure(m.Setup))
	case *msgs.SimStatusQuery:
		return &msgs.SimStatusReply{Status: c.Status()}
	case *msgs.SimLogQuery:
		return c.log(m)
	}
	return nil
}

// Status builds the current status.
func (c *Controller) Status() *msgs.SimStatus {
	d := c.Driver
	pose, target := d.Robot().Position(), d.Target()
	return &msgs.SimStatus{
		State:   d.State().String(),
		Source:  string(d.Source()),
		RunID:   c.runID,
		Steps:   d.Steps(),
		SimTime: d.SimTime(),
		X:       pose.X,
		Y:       pose.Y,
		Theta:   pose.Orientation.Radians(),
		TargetX: target.X,
		TargetY: target.Y,
		Setup:   SetupToMsg(d.Setup()),
	}
}

func (c *Controller) start() error {
	if err := c.Driver.Start(); err != nil {
		return err
	}
	c.runID = c.NewRunID()
	glog.Infof("run %s started", c.runID)
	return c.transition(nil)
}

func (c *Controller) transition(err error) error {
	if err == nil {
		c.statusChanged = true
	}
	return err
}

func (c *Controller) configure(setup *msgs.SimSetup) error {
	if setup == nil {
		return fmt.Errorf("setup required")
	}
	s := SetupFromMsg(setup)
	if err := s.Validate(); err != nil {
		return err
	}
	c.Driver.Configure(s)
	return c.transition(nil)
}

func (c *Controller) log(q *msgs.SimLogQuery) *msgs.SimLog {
	records := c.Driver.SessionLog()
	if q.Window {
		records = c.Driver.PlotWindow()
	}
	if q.Limit > 0 && int(q.Limit) < len(records) {
		records = records[len(records)-int(q.Limit):]
	}
	return &msgs.SimLog{RunID: c.runID, Records: RecordsToMsg(records), Steps: c.Driver.Steps()}
}

func (c *Controller) reply(err error) fx.Message {
	if err != nil {
		glog.Warningf("command rejected: %v", err)
		return msgs.NewCommandErr(err)
	}
	return msgs.NewCommandOK()
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed && c.Registrar != nil {
		return c.Registrar.SendEvent(cc.Context(), c.Status())
	}
	return nil
}
