package diffdrive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/sim"
)

func TestInitialize(t *testing.T) {
	r := New(Params{L: 50, K: 0.1, Dt: 0.05})
	r.Initialize(10, 20, 90)
	pose := r.Position()
	require.Equal(t, 10.0, pose.X)
	require.Equal(t, 20.0, pose.Y)
	require.InDelta(t, math.Pi/2, pose.Orientation.Radians(), 1e-12)

	ext := r.ExtensionPoint()
	require.InDelta(t, 10, ext.X, 1e-9)
	require.InDelta(t, 70, ext.Y, 1e-9)
	require.Equal(t, []sim.Pos2D{ext}, r.Trajectory())
}

func TestStepIsDeterministic(t *testing.T) {
	a, b := New(DefaultParams()), New(DefaultParams())
	a.Initialize(-30, 12, 37)
	b.Initialize(-30, 12, 37)
	for i := 0; i < 100; i++ {
		ca, cb := a.Step(100, -80), b.Step(100, -80)
		require.Equal(t, ca, cb)
		require.Equal(t, a.Position(), b.Position())
	}
	require.Equal(t, a.Trajectory(), b.Trajectory())
}

func TestStepControlLaw(t *testing.T) {
	testCases := []struct {
		name   string
		theta  float64
		target sim.Pos2D
	}{
		{name: "heading zero", theta: 0, target: sim.Pos2D{X: 100, Y: 100}},
		{name: "heading 90", theta: 90, target: sim.Pos2D{X: -40, Y: 10}},
		{name: "heading negative", theta: -135, target: sim.Pos2D{X: 0, Y: -200}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Params{L: 50, K: 0.1, Dt: 0.05}
			r := New(p)
			r.Initialize(0, 0, tc.theta)
			th := tc.theta * math.Pi / 180
			ex := p.L*math.Cos(th) - tc.target.X
			ey := p.L*math.Sin(th) - tc.target.Y
			ux, uy := -p.K*ex, -p.K*ey

			cmd := r.Step(tc.target.X, tc.target.Y)
			require.InDelta(t, ex, cmd.Ex, 1e-9)
			require.InDelta(t, ey, cmd.Ey, 1e-9)
			// J·(V, W) must reproduce the commanded control point velocity.
			require.InDelta(t, ux, math.Cos(th)*cmd.V-p.L*math.Sin(th)*cmd.W, 1e-9)
			require.InDelta(t, uy, math.Sin(th)*cmd.V+p.L*math.Cos(th)*cmd.W, 1e-9)
		})
	}
}

func TestStepHeadingFirst(t *testing.T) {
	p := Params{L: 50, K: 0.5, Dt: 0.1}
	r := New(p)
	r.Initialize(0, 0, 0)
	cmd := r.Step(0, 100)
	require.NotZero(t, cmd.W)

	theta := cmd.W * p.Dt
	pose := r.Position()
	require.InDelta(t, theta, pose.Orientation.Radians(), 1e-12)
	require.InDelta(t, cmd.V*math.Cos(theta)*p.Dt, pose.X, 1e-12)
	require.InDelta(t, cmd.V*math.Sin(theta)*p.Dt, pose.Y, 1e-12)
	// position-first integration would leave y untouched from theta=0.
	require.NotEqual(t, 0.0, pose.Y)
}

func TestStepSingularOffset(t *testing.T) {
	r := New(Params{L: 0, K: 0.1, Dt: 0.05})
	r.Initialize(0, 0, 0)
	cmd := r.Step(100, 100)
	require.False(t, math.IsNaN(cmd.V) || math.IsInf(cmd.V, 0))
	require.True(t, math.IsInf(cmd.W, 0) || math.IsNaN(cmd.W))

	// a target on the heading line gives 0/0.
	r.Initialize(0, 0, 0)
	cmd = r.Step(100, 0)
	require.True(t, math.IsNaN(cmd.W))
}

func TestStepNaNPropagates(t *testing.T) {
	r := New(DefaultParams())
	r.Initialize(0, 0, 0)
	cmd := r.Step(math.NaN(), 0)
	require.True(t, math.IsNaN(cmd.Ex))
	require.True(t, math.IsNaN(cmd.V))
	require.True(t, math.IsNaN(r.Position().X))
}

func TestStepConverges(t *testing.T) {
	r := New(Params{L: 50, K: 0.1, Dt: 0.05})
	r.Initialize(0, 0, 0)
	target := sim.Pos2D{X: 100, Y: 100}
	start := r.DistanceTo(target)
	prev := start
	for i := 0; i < 2000; i++ {
		r.Step(target.X, target.Y)
		d := r.DistanceTo(target)
		require.Less(t, d, prev, "step %d", i)
		prev = d
	}
	require.Less(t, prev, start*1e-2)
}

func TestThetaNotWrapped(t *testing.T) {
	p := Params{L: 50, K: 0.1, Dt: 0.05}
	r := New(p)
	r.Initialize(0, 0, 720)
	require.InDelta(t, 4*math.Pi, r.Position().Orientation.Radians(), 1e-12)

	cmd := r.Step(0, 100)
	require.InDelta(t, 4*math.Pi+cmd.W*p.Dt, r.Position().Orientation.Radians(), 1e-12)
}

func TestTrajectoryCapped(t *testing.T) {
	r := New(DefaultParams()).WithTrajectoryLimit(100, 10)
	r.Initialize(0, 0, 0)
	var expect []sim.Pos2D
	for i := 0; i < 1000; i++ {
		r.Step(200, 50)
		expect = append(expect, r.ExtensionPoint())
		require.LessOrEqual(t, len(r.Trajectory()), 110)
	}
	traj := r.Trajectory()
	require.Equal(t, expect[len(expect)-len(traj):], traj)
}
