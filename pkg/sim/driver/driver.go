// Package driver runs the robot model in fixed timesteps decoupled
// from the rate frames arrive at.
package driver

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/sim"
	"github.com/robotalks/pursuit/pkg/sim/physics/diffdrive"
)

// Driver owns the simulation lifecycle, the step logs and the robot.
// It is not safe for concurrent use: everything runs on the loop
// goroutine, other goroutines post messages instead.
type Driver struct {
	// Scheduler arms frame callbacks. Without one, Frame must be called
	// explicitly.
	Scheduler fx.FrameScheduler
	// MaxFrameDelta caps the wall-clock time accounted in one frame.
	MaxFrameDelta time.Duration
	// MaxStepsPerFrame caps the steps executed in one frame, the
	// backlog is left for following frames.
	MaxStepsPerFrame int

	robot     *diffdrive.Robot
	setup     Setup
	workspace sim.Rect

	state  State
	source Source
	target sim.Pos2D

	frame *fx.FrameHandle
	last  time.Time
	acc   time.Duration
	dt    time.Duration
	steps uint64

	session *sim.History[StepRecord]
	window  *sim.History[StepRecord]

	renderDirty bool
	chartsDirty bool
}

// New creates an idle Driver with the robot placed per setup.
func New(setup Setup, workspace sim.Rect) *Driver {
	d := &Driver{
		MaxFrameDelta:    DefaultMaxFrameDelta,
		MaxStepsPerFrame: DefaultMaxStepsPerFrame,
		robot:            diffdrive.New(setup.Params()),
		workspace:        workspace,
		source:           SourceManual,
		session:          sim.NewHistory[StepRecord](0, 0),
		window:           sim.NewHistory[StepRecord](DefaultWindowMax, DefaultWindowTrim),
	}
	d.setup = setup
	d.apply()
	return d
}

// AddToLoop implements LoopAdder. A run started before is armed here.
func (d *Driver) AddToLoop(l *fx.Loop) {
	d.Scheduler = l
	if d.state == Running {
		d.arm()
	}
}

// Configure replaces the setup. It's applied to the robot right away
// when idle, otherwise on the next Reset.
func (d *Driver) Configure(setup Setup) {
	d.setup = setup
	if d.state == Idle {
		d.apply()
		d.renderDirty = true
	}
}

// Start begins a run from the current setup.
func (d *Driver) Start() error {
	if d.state != Idle {
		return transitionErr(d.state, "start")
	}
	d.apply()
	d.clear()
	d.state = Running
	d.arm()
	glog.Infof("simulation started: %+v", d.setup)
	return nil
}

// Pause stops stepping, accumulated time is discarded.
func (d *Driver) Pause() error {
	if d.state != Running {
		return transitionErr(d.state, "pause")
	}
	d.disarm()
	d.state = Paused
	glog.Infof("simulation paused at t=%.3f", d.SimTime())
	return nil
}

// Resume continues a paused run with a fresh accumulator.
func (d *Driver) Resume() error {
	if d.state != Paused {
		return transitionErr(d.state, "resume")
	}
	d.state = Running
	d.acc, d.last = 0, time.Time{}
	d.arm()
	glog.Infof("simulation resumed at t=%.3f", d.SimTime())
	return nil
}

// Reset stops the run, clears logs and re-applies the setup.
func (d *Driver) Reset() {
	d.disarm()
	d.state = Idle
	d.apply()
	d.clear()
	glog.Info("simulation reset")
}

// SetTarget moves the target if source is the active one.
// The position is clamped to the workspace.
func (d *Driver) SetTarget(x, y float64, source Source) bool {
	if source != d.source {
		glog.V(2).Infof("target (%v, %v) from %s ignored, active source is %s", x, y, source, d.source)
		return false
	}
	d.target = d.workspace.Clamp(sim.Pos2D{X: x, Y: y})
	d.renderDirty = true
	return true
}

// SelectSource switches the active target source.
func (d *Driver) SelectSource(source Source) error {
	src, err := ParseSource(string(source))
	if err != nil {
		return err
	}
	d.source = src
	return nil
}

// Frame is the per-frame callback. It accounts the wall-clock time since
// the previous frame and runs as many fixed steps as allowed.
// It returns the number of steps executed.
func (d *Driver) Frame(now time.Time) int {
	if d.state != Running {
		return 0
	}
	var delta time.Duration
	if !d.last.IsZero() {
		delta = now.Sub(d.last)
		if delta < 0 {
			delta = 0
		} else if delta > d.MaxFrameDelta {
			delta = d.MaxFrameDelta
		}
	}
	d.last = now
	d.acc += delta

	steps := 0
	for d.acc >= d.dt && steps < d.MaxStepsPerFrame {
		d.step()
		d.acc -= d.dt
		steps++
	}
	d.renderDirty = true
	if steps > 0 {
		d.chartsDirty = true
	}
	d.arm()
	return steps
}

func (d *Driver) step() {
	cmd := d.robot.Step(d.target.X, d.target.Y)
	d.steps++
	pose := d.robot.Position()
	rec := StepRecord{
		T:       float64(d.steps) * d.robot.Dt,
		Ex:      cmd.Ex,
		Ey:      cmd.Ey,
		V:       cmd.V,
		W:       cmd.W,
		X:       pose.X,
		Y:       pose.Y,
		Theta:   pose.Orientation.Radians(),
		TargetX: d.target.X,
		TargetY: d.target.Y,
	}
	d.session.Append(rec)
	d.window.Append(rec)
}

func (d *Driver) apply() {
	d.robot.Params = d.setup.Params()
	d.robot.Initialize(d.setup.X0, d.setup.Y0, d.setup.Theta0)
	d.dt = d.setup.StepDuration()
}

func (d *Driver) clear() {
	d.session.Reset()
	d.window.Reset()
	d.acc, d.last, d.steps = 0, time.Time{}, 0
	d.renderDirty, d.chartsDirty = true, true
}

func (d *Driver) arm() {
	if d.Scheduler != nil && !d.frame.Pending() {
		d.frame = d.Scheduler.RequestFrame(func(now time.Time) { d.Frame(now) })
	}
}

func (d *Driver) disarm() {
	d.frame.Cancel()
	d.frame = nil
	d.acc, d.last = 0, time.Time{}
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Source returns the active target source.
func (d *Driver) Source() Source {
	return d.source
}

// Target returns the current target.
func (d *Driver) Target() sim.Pos2D {
	return d.target
}

// Setup returns the current setup.
func (d *Driver) Setup() Setup {
	return d.setup
}

// Workspace returns the rectangle targets are clamped to.
func (d *Driver) Workspace() sim.Rect {
	return d.workspace
}

// Steps returns the steps executed since start.
func (d *Driver) Steps() uint64 {
	return d.steps
}

// SimTime returns the simulated seconds since start.
func (d *Driver) SimTime() float64 {
	return float64(d.steps) * d.robot.Dt
}

// Robot exposes the model for reading.
func (d *Driver) Robot() *diffdrive.Robot {
	return d.robot
}

// SessionLog returns every record of the run, oldest first.
// The slice must not be modified or retained across frames.
func (d *Driver) SessionLog() []StepRecord {
	return d.session.Items()
}

// PlotWindow returns the capped rolling window of recent records.
// The slice must not be modified or retained across frames.
func (d *Driver) PlotWindow() []StepRecord {
	return d.window.Items()
}

// Scene assembles what renderers need.
func (d *Driver) Scene() sim.Scene {
	return sim.Scene{
		Pose:         d.robot.Position(),
		ControlPoint: d.robot.ExtensionPoint(),
		Target:       d.target,
		Trajectory:   d.robot.Trajectory(),
	}
}

// TakeDirty returns and clears the render and charts dirty flags.
func (d *Driver) TakeDirty() (render, charts bool) {
	render, charts = d.renderDirty, d.chartsDirty
	d.renderDirty, d.chartsDirty = false, false
	return
}
