// Package diffdrive simulates a differential-drive robot steered by
// a proportional law on a point ahead of its wheel axis.
package diffdrive

import (
	"math"

	"github.com/robotalks/pursuit/pkg/sim"
)

// Defaults
const (
	DefaultOffset         = 50.0 // mm
	DefaultGain           = 0.1  // 1/s
	DefaultTimestep       = 0.05 // s
	DefaultTrajectoryMax  = 5000
	DefaultTrajectoryTrim = 500
)

// Params are the tunables of the model.
type Params struct {
	// L is the signed offset (mm) of the control point along the heading.
	// It must not be zero: the control law divides by it.
	L float64
	// K is the proportional gain (1/s).
	K float64
	// Dt is the integration timestep (s).
	Dt float64
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{L: DefaultOffset, K: DefaultGain, Dt: DefaultTimestep}
}

// Command is the output of one control step.
type Command struct {
	// Ex, Ey is the control point error to the target.
	Ex, Ey float64
	// V is the linear velocity (mm/s), W the angular velocity (rad/s).
	V, W float64
}

// Robot is the kinematic model.
type Robot struct {
	Params

	pose       sim.Pose2D
	trajectory *sim.History[sim.Pos2D]
}

// New creates a Robot at origin.
func New(params Params) *Robot {
	r := &Robot{
		Params:     params,
		trajectory: sim.NewHistory[sim.Pos2D](DefaultTrajectoryMax, DefaultTrajectoryTrim),
	}
	r.Initialize(0, 0, 0)
	return r
}

// WithTrajectoryLimit changes how many trajectory samples are kept.
func (r *Robot) WithTrajectoryLimit(limit, batch int) *Robot {
	r.trajectory.Max, r.trajectory.Batch = limit, batch
	return r
}

// Initialize places the robot and restarts the trajectory from the
// resulting control point.
func (r *Robot) Initialize(x0, y0, theta0Degrees float64) {
	r.pose = sim.Pose2D{
		Pos2D:       sim.Pos2D{X: x0, Y: y0},
		Orientation: sim.AngleFromDegrees(theta0Degrees),
	}
	r.trajectory.Reset(r.ExtensionPoint())
}

// Step runs the control law against the target and integrates one Dt.
func (r *Robot) Step(targetX, targetY float64) Command {
	theta := r.pose.Orientation
	cos, sin := theta.Cos(), theta.Sin()
	l, k, dt := r.L, r.K, r.Dt

	xExt, yExt := r.pose.X+l*cos, r.pose.Y+l*sin
	ex, ey := xExt-targetX, yExt-targetY
	ux, uy := -k*ex, -k*ey

	// inverse of [[cos, -l·sin], [sin, l·cos]], det = l.
	v := cos*ux + sin*uy
	w := (-sin*ux + cos*uy) / l

	// heading first, position uses the updated heading.
	r.pose.Orientation = theta.AddRadians(w * dt)
	r.pose.OffsetBy(r.pose.Orientation.Project(v * dt))

	r.trajectory.Append(r.ExtensionPoint())
	return Command{Ex: ex, Ey: ey, V: v, W: w}
}

// Position returns the current pose.
func (r *Robot) Position() sim.Pose2D {
	return r.pose
}

// ExtensionPoint computes the control point from the current pose.
func (r *Robot) ExtensionPoint() sim.Pos2D {
	return r.pose.Pos2D.Add(r.pose.Orientation.Project(r.L))
}

// Trajectory returns the control point samples, oldest first.
// Callers must not modify it.
func (r *Robot) Trajectory() []sim.Pos2D {
	return r.trajectory.Items()
}

// DistanceTo returns the distance from the control point to p.
func (r *Robot) DistanceTo(p sim.Pos2D) float64 {
	d := r.ExtensionPoint().Sub(p)
	return math.Hypot(d.X, d.Y)
}
