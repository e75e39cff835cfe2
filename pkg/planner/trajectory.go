// Package planner produces a stream of goal positions from high level
// commands (go to a point, follow a shape).
package planner

import (
	"errors"
	"math"

	"github.com/robotalks/pursuit/pkg/sim"
)

// Trajectory is a path sampled by time.
type Trajectory interface {
	// Reset restarts the trajectory from the start position.
	Reset(start sim.Pos2D)
	// Sample returns the position t seconds after Reset and whether the
	// trajectory has finished.
	Sample(t float64) (sim.Pos2D, bool)
}

// ErrTooFewWaypoints indicates a path with less than 2 points.
var ErrTooFewWaypoints = errors.New("at least 2 waypoints required")

const minPositive = 1e-3

func positive(v float64) float64 {
	return math.Max(minPositive, v)
}

// loopsDone reports whether periodic trajectory finished. Zero loops
// means forever.
func loopsDone(t, period float64, loops int) bool {
	return loops > 0 && t >= float64(loops)*period
}

// Hold stays at Target.
type Hold struct {
	Target sim.Pos2D
}

// Reset implements Trajectory.
func (h *Hold) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (h *Hold) Sample(float64) (sim.Pos2D, bool) {
	return h.Target, false
}

// LineTo moves from start to Target at constant Speed (mm/s).
type LineTo struct {
	Target sim.Pos2D
	Speed  float64

	start sim.Pos2D
	dir   sim.Pos2D
	dist  float64
}

// Reset implements Trajectory.
func (l *LineTo) Reset(start sim.Pos2D) {
	l.start = start
	d := l.Target.Sub(start)
	l.dist = math.Hypot(d.X, d.Y)
	if l.dist < 1e-6 {
		l.dir = sim.Pos2D{}
		return
	}
	l.dir = sim.Pos2D{X: d.X / l.dist, Y: d.Y / l.dist}
}

// Sample implements Trajectory.
func (l *LineTo) Sample(t float64) (sim.Pos2D, bool) {
	s := positive(l.Speed) * t
	if l.dist < 1e-6 || s >= l.dist {
		return l.Target, true
	}
	return sim.Pos2D{X: l.start.X + l.dir.X*s, Y: l.start.Y + l.dir.Y*s}, false
}

// Circle goes counter-clockwise around Center, one loop per Period seconds.
type Circle struct {
	Center sim.Pos2D
	Radius float64
	Period float64
	Loops  int
}

// Reset implements Trajectory.
func (c *Circle) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (c *Circle) Sample(t float64) (sim.Pos2D, bool) {
	period := positive(c.Period)
	a := 2 * math.Pi / period * t
	r := math.Abs(c.Radius)
	return sim.Pos2D{X: c.Center.X + r*math.Cos(a), Y: c.Center.Y + r*math.Sin(a)},
		loopsDone(t, period, c.Loops)
}

// Ellipse is a Circle with semi-axes A (x) and B (y).
type Ellipse struct {
	Center sim.Pos2D
	A, B   float64
	Period float64
	Loops  int
}

// Reset implements Trajectory.
func (e *Ellipse) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (e *Ellipse) Sample(t float64) (sim.Pos2D, bool) {
	period := positive(e.Period)
	a := 2 * math.Pi / period * t
	return sim.Pos2D{X: e.Center.X + math.Abs(e.A)*math.Cos(a), Y: e.Center.Y + math.Abs(e.B)*math.Sin(a)},
		loopsDone(t, period, e.Loops)
}

// Figure8 is the Lissajous curve x = A sin(wt), y = B sin(2wt).
type Figure8 struct {
	Center sim.Pos2D
	A, B   float64
	Period float64
	Loops  int
}

// Reset implements Trajectory.
func (f *Figure8) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (f *Figure8) Sample(t float64) (sim.Pos2D, bool) {
	period := positive(f.Period)
	w := 2 * math.Pi / period
	return sim.Pos2D{X: f.Center.X + math.Abs(f.A)*math.Sin(w*t), Y: f.Center.Y + math.Abs(f.B)*math.Sin(2*w*t)},
		loopsDone(t, period, f.Loops)
}

// Sine advances along x at Speed (may be negative) while oscillating
// around Center.Y.
type Sine struct {
	Center   sim.Pos2D
	Amp      float64
	Freq     float64 // Hz
	Speed    float64
	Duration float64
}

// Reset implements Trajectory.
func (s *Sine) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (s *Sine) Sample(t float64) (sim.Pos2D, bool) {
	freq := math.Max(0, s.Freq)
	return sim.Pos2D{X: s.Center.X + s.Speed*t, Y: s.Center.Y + math.Abs(s.Amp)*math.Sin(2*math.Pi*freq*t)},
		t >= positive(s.Duration)
}

// Waypoints follows a polyline at constant speed.
type Waypoints struct {
	Points []sim.Pos2D
	Speed  float64
	// Loops is the number of passes, zero cycles forever on a closed
	// path and stops at the end of an open one.
	Loops  int
	Closed bool

	seg   []float64
	cum   []float64
	total float64
}

// NewWaypoints creates Waypoints.
func NewWaypoints(points []sim.Pos2D, speed float64, loops int, closed bool) (*Waypoints, error) {
	if len(points) < 2 {
		return nil, ErrTooFewWaypoints
	}
	w := &Waypoints{Points: points, Speed: speed, Loops: loops, Closed: closed}
	w.cum = append(w.cum, 0)
	total := 0.0
	for i := 1; i < len(points); i++ {
		d := points[i].Sub(points[i-1])
		l := math.Hypot(d.X, d.Y)
		w.seg = append(w.seg, l)
		total += l
		w.cum = append(w.cum, total)
	}
	w.total = math.Max(1e-6, total)
	return w, nil
}

// Reset implements Trajectory.
func (w *Waypoints) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (w *Waypoints) Sample(t float64) (sim.Pos2D, bool) {
	s := positive(w.Speed) * t
	switch {
	case w.Loops > 0:
		if s >= float64(w.Loops)*w.total {
			return w.Points[len(w.Points)-1], true
		}
		s = math.Mod(s, w.total)
	case w.Closed:
		s = math.Mod(s, w.total)
	default:
		s = math.Min(s, w.total)
	}
	k := 0
	for k < len(w.seg)-1 && w.cum[k+1] < s {
		k++
	}
	u := (s - w.cum[k]) / math.Max(1e-6, w.seg[k])
	p0, p1 := w.Points[k], w.Points[k+1]
	return sim.Pos2D{X: p0.X + u*(p1.X-p0.X), Y: p0.Y + u*(p1.Y-p0.Y)}, false
}

// Racetrack is two straights joined by semicircles, parameterized by
// arc length. It starts at the right end of the top straight heading
// left.
type Racetrack struct {
	Center   sim.Pos2D
	Straight float64
	Radius   float64
	Speed    float64
	Loops    int
}

// Reset implements Trajectory.
func (r *Racetrack) Reset(sim.Pos2D) {}

// Perimeter is the length of one lap.
func (r *Racetrack) Perimeter() float64 {
	return 2*math.Abs(r.Straight) + 2*math.Pi*math.Abs(r.Radius)
}

// Sample implements Trajectory.
func (r *Racetrack) Sample(t float64) (sim.Pos2D, bool) {
	straight, radius := math.Abs(r.Straight), math.Abs(r.Radius)
	xR, xL := r.Center.X+straight/2, r.Center.X-straight/2
	yT, yB := r.Center.Y+radius, r.Center.Y-radius
	total := r.Perimeter()
	s := positive(r.Speed) * t
	if r.Loops > 0 && s >= float64(r.Loops)*total {
		return sim.Pos2D{X: xR, Y: yT}, true
	}
	if total <= 0 {
		return r.Center, false
	}
	s = math.Mod(s, total)

	if s < straight {
		return sim.Pos2D{X: xR - s, Y: yT}, false
	}
	s -= straight
	arc := math.Pi * radius
	if s < arc {
		a := math.Pi/2 + s/arc*math.Pi
		return sim.Pos2D{X: xL + radius*math.Cos(a), Y: r.Center.Y + radius*math.Sin(a)}, false
	}
	s -= arc
	if s < straight {
		return sim.Pos2D{X: xL + s, Y: yB}, false
	}
	s -= straight
	a := 3*math.Pi/2 + s/arc*math.Pi
	return sim.Pos2D{X: xR + radius*math.Cos(a), Y: r.Center.Y + radius*math.Sin(a)}, false
}

// ClothoidStep is the internal integration step in seconds.
const ClothoidStep = 0.02

// Clothoid starts heading along +x with curvature growing linearly
// with arc length (k = KRate * s). It's integrated numerically so it
// must be sampled with non-decreasing t.
type Clothoid struct {
	KRate    float64
	Speed    float64
	Duration float64

	lastT float64
	pos   sim.Pos2D
	theta float64
	s     float64
}

// Reset implements Trajectory.
func (c *Clothoid) Reset(start sim.Pos2D) {
	c.lastT, c.pos, c.theta, c.s = 0, start, 0, 0
}

// Sample implements Trajectory.
func (c *Clothoid) Sample(t float64) (sim.Pos2D, bool) {
	done := t >= positive(c.Duration)
	dt := t - c.lastT
	if dt <= 0 {
		return c.pos, done
	}
	steps := int(dt / ClothoidStep)
	if steps < 1 {
		steps = 1
	}
	h := dt / float64(steps)
	speed := positive(c.Speed)
	for i := 0; i < steps; i++ {
		ds := speed * h
		c.s += ds
		c.theta += c.KRate * c.s * ds
		c.pos.X += math.Cos(c.theta) * ds
		c.pos.Y += math.Sin(c.theta) * ds
	}
	c.lastT = t
	return c.pos, done
}

// Spiral is the Archimedean spiral r = R0 + K*theta.
type Spiral struct {
	Center   sim.Pos2D
	R0       float64
	K        float64
	Period   float64
	Duration float64
}

// Reset implements Trajectory.
func (s *Spiral) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (s *Spiral) Sample(t float64) (sim.Pos2D, bool) {
	theta := 2 * math.Pi / positive(s.Period) * t
	r := math.Abs(s.R0) + s.K*theta
	return sim.Pos2D{X: s.Center.X + r*math.Cos(theta), Y: s.Center.Y + r*math.Sin(theta)},
		t >= positive(s.Duration)
}

// Spline is a Catmull-Rom curve through Points, each segment taking an
// equal share of Duration.
type Spline struct {
	Points   []sim.Pos2D
	Duration float64
}

// NewSpline creates a Spline.
func NewSpline(points []sim.Pos2D, duration float64) (*Spline, error) {
	if len(points) < 2 {
		return nil, ErrTooFewWaypoints
	}
	return &Spline{Points: points, Duration: duration}, nil
}

// Reset implements Trajectory.
func (s *Spline) Reset(sim.Pos2D) {}

// Sample implements Trajectory.
func (s *Spline) Sample(t float64) (sim.Pos2D, bool) {
	duration, n := positive(s.Duration), len(s.Points)-1
	if t >= duration {
		return s.Points[n], true
	}
	pos := t / duration * float64(n)
	i := int(math.Floor(pos))
	u := pos - float64(i)
	if i < 0 {
		i = 0
	} else if i > n-1 {
		i = n - 1
	}
	p1, p2 := s.Points[i], s.Points[i+1]
	p0, p3 := p1, p2
	if i > 0 {
		p0 = s.Points[i-1]
	}
	if i+2 <= n {
		p3 = s.Points[i+2]
	}
	return CatmullRom(p0, p1, p2, p3, u), false
}

// CatmullRom interpolates between p1 (u=0) and p2 (u=1).
func CatmullRom(p0, p1, p2, p3 sim.Pos2D, u float64) sim.Pos2D {
	u2 := u * u
	u3 := u2 * u
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*u + (2*a-5*b+4*c-d)*u2 + (-a+3*b-3*c+d)*u3)
	}
	return sim.Pos2D{X: f(p0.X, p1.X, p2.X, p3.X), Y: f(p0.Y, p1.Y, p2.Y, p3.Y)}
}
