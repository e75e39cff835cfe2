package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/sim"
)

func requirePos(t *testing.T, expect, actual sim.Pos2D) {
	t.Helper()
	require.InDelta(t, expect.X, actual.X, 1e-6, "x")
	require.InDelta(t, expect.Y, actual.Y, 1e-6, "y")
}

func TestLineTo(t *testing.T) {
	l := &LineTo{Target: sim.Pos2D{X: 300}, Speed: 150}
	l.Reset(sim.Pos2D{})
	pos, done := l.Sample(1)
	requirePos(t, sim.Pos2D{X: 150}, pos)
	assert.False(t, done)
	pos, done = l.Sample(2)
	requirePos(t, sim.Pos2D{X: 300}, pos)
	assert.True(t, done)

	l.Reset(sim.Pos2D{X: 300})
	_, done = l.Sample(0)
	assert.True(t, done, "already there")
}

func TestPeriodicShapes(t *testing.T) {
	testCases := []struct {
		name   string
		traj   Trajectory
		t      float64
		expect sim.Pos2D
		done   bool
	}{
		{"circle start", &Circle{Radius: 100, Period: 4}, 0, sim.Pos2D{X: 100}, false},
		{"circle quarter", &Circle{Center: sim.Pos2D{X: 10}, Radius: 100, Period: 4}, 1, sim.Pos2D{X: 10, Y: 100}, false},
		{"circle loops", &Circle{Radius: 100, Period: 4, Loops: 1}, 4, sim.Pos2D{X: 100}, true},
		{"ellipse quarter", &Ellipse{A: 300, B: 100, Period: 8}, 2, sim.Pos2D{Y: 100}, false},
		{"figure8 quarter", &Figure8{A: 300, B: 100, Period: 8}, 2, sim.Pos2D{X: 300}, false},
		{"sine", &Sine{Center: sim.Pos2D{Y: 10}, Amp: 50, Freq: 0.25, Speed: 20, Duration: 10}, 1, sim.Pos2D{X: 20, Y: 60}, false},
		{"sine done", &Sine{Amp: 50, Freq: 0.25, Speed: -20, Duration: 2}, 2, sim.Pos2D{X: -40}, true},
		{"spiral start", &Spiral{R0: 20, K: 10, Period: 4, Duration: 10}, 0, sim.Pos2D{X: 20}, false},
		{"spiral quarter", &Spiral{R0: 20, K: 10, Period: 4, Duration: 1}, 1, sim.Pos2D{Y: 20 + 10*math.Pi/2}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.traj.Reset(sim.Pos2D{})
			pos, done := tc.traj.Sample(tc.t)
			requirePos(t, tc.expect, pos)
			assert.Equal(t, tc.done, done)
		})
	}
}

func TestWaypoints(t *testing.T) {
	square := []sim.Pos2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}, {X: 0, Y: 0}}
	_, err := NewWaypoints(square[:1], 100, 0, true)
	require.ErrorIs(t, err, ErrTooFewWaypoints)

	w, err := NewWaypoints(square, 100, 1, true)
	require.NoError(t, err)
	pos, done := w.Sample(1.5)
	requirePos(t, sim.Pos2D{X: 100, Y: 50}, pos)
	assert.False(t, done)
	pos, done = w.Sample(4)
	requirePos(t, sim.Pos2D{}, pos)
	assert.True(t, done)

	w.Loops = 0
	pos, done = w.Sample(4.5)
	requirePos(t, sim.Pos2D{X: 50}, pos)
	assert.False(t, done, "closed path cycles forever")

	open, err := NewWaypoints(square[:3], 100, 0, false)
	require.NoError(t, err)
	pos, done = open.Sample(100)
	requirePos(t, sim.Pos2D{X: 100, Y: 100}, pos)
	assert.False(t, done)
}

func TestRacetrack(t *testing.T) {
	r := &Racetrack{Straight: 200, Radius: 50, Speed: 100, Loops: 1}
	r.Reset(sim.Pos2D{})
	quarterArc := math.Pi * 50 / 2 / 100

	pos, _ := r.Sample(0)
	requirePos(t, sim.Pos2D{X: 100, Y: 50}, pos)
	pos, _ = r.Sample(1)
	requirePos(t, sim.Pos2D{X: 0, Y: 50}, pos)
	pos, _ = r.Sample(2 + quarterArc)
	requirePos(t, sim.Pos2D{X: -150, Y: 0}, pos)
	pos, _ = r.Sample(2 + 2*quarterArc + 1)
	requirePos(t, sim.Pos2D{X: 0, Y: -50}, pos)
	pos, _ = r.Sample(4 + 3*quarterArc)
	requirePos(t, sim.Pos2D{X: 150, Y: 0}, pos)

	pos, done := r.Sample(r.Perimeter()/100 + 0.01)
	requirePos(t, sim.Pos2D{X: 100, Y: 50}, pos)
	assert.True(t, done)
}

func TestClothoid(t *testing.T) {
	c := &Clothoid{Speed: 100, Duration: 2}
	c.Reset(sim.Pos2D{X: 10, Y: 10})
	pos, done := c.Sample(1)
	requirePos(t, sim.Pos2D{X: 110, Y: 10}, pos)
	assert.False(t, done)
	pos, done = c.Sample(1)
	requirePos(t, sim.Pos2D{X: 110, Y: 10}, pos)
	assert.False(t, done)

	c = &Clothoid{KRate: 1e-4, Speed: 100, Duration: 2}
	c.Reset(sim.Pos2D{})
	pos, done = c.Sample(2)
	assert.True(t, done)
	assert.Greater(t, pos.Y, 0.0, "curves left")
	assert.Less(t, pos.X, 200.0)
}

func TestSpline(t *testing.T) {
	_, err := NewSpline([]sim.Pos2D{{}}, 10)
	require.ErrorIs(t, err, ErrTooFewWaypoints)

	s, err := NewSpline([]sim.Pos2D{{X: 0}, {X: 100, Y: 100}, {X: 200}}, 10)
	require.NoError(t, err)
	pos, done := s.Sample(0)
	requirePos(t, sim.Pos2D{}, pos)
	assert.False(t, done)
	pos, _ = s.Sample(5)
	requirePos(t, sim.Pos2D{X: 100, Y: 100}, pos)
	pos, done = s.Sample(10)
	requirePos(t, sim.Pos2D{X: 200}, pos)
	assert.True(t, done)

	mid := CatmullRom(sim.Pos2D{}, sim.Pos2D{}, sim.Pos2D{X: 100, Y: 50}, sim.Pos2D{X: 100, Y: 50}, 0.5)
	requirePos(t, sim.Pos2D{X: 50, Y: 25}, mid)
}

func TestHold(t *testing.T) {
	h := &Hold{Target: sim.Pos2D{X: 1, Y: 2}}
	h.Reset(sim.Pos2D{X: 100})
	pos, done := h.Sample(1000)
	assert.Equal(t, sim.Pos2D{X: 1, Y: 2}, pos)
	assert.False(t, done)
}
