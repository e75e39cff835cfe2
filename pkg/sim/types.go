package sim

// Size2D defines the rectangular size in 2D.
type Size2D struct {
	CX, CY float64
}

// Pos2D defines the position in 2D.
type Pos2D struct {
	X, Y float64
}

// Rect defines a rectangle in 2D.
type Rect struct {
	Pos2D
	Size2D
}

// Pose2D defines the pose in 2D.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Angle is the common representation of angle,
// supporting multiple units. It is not wrapped into
// (-π, π], see Normalized.
type Angle float64

// Scene is what a renderer needs to draw one frame.
type Scene struct {
	Pose         Pose2D
	ControlPoint Pos2D
	Target       Pos2D
	Trajectory   []Pos2D
}

// SceneRenderer consumes a frame.
type SceneRenderer interface {
	Render(Scene)
}

// RenderSceneFunc is the func form of SceneRenderer.
type RenderSceneFunc func(Scene)

// Render implements SceneRenderer.
func (f RenderSceneFunc) Render(s Scene) {
	f(s)
}

// Add is a helper to add Pos2D.
func (p Pos2D) Add(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X + p1.X, Y: p.Y + p1.Y}
}

// Sub is a helper to subtract Pos2D.
func (p Pos2D) Sub(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X - p1.X, Y: p.Y - p1.Y}
}

// OffsetBy performs Add in-place.
func (p *Pos2D) OffsetBy(p1 Pos2D) *Pos2D {
	p.X += p1.X
	p.Y += p1.Y
	return p
}

// RectAround creates a Rect centered at origin spanning [-hw, hw] x [-hh, hh].
func RectAround(hw, hh float64) Rect {
	return Rect{Pos2D: Pos2D{X: -hw, Y: -hh}, Size2D: Size2D{CX: 2 * hw, CY: 2 * hh}}
}

// Min is the lower-left corner.
func (r Rect) Min() Pos2D {
	return r.Pos2D
}

// Max is the upper-right corner.
func (r Rect) Max() Pos2D {
	return Pos2D{X: r.X + r.CX, Y: r.Y + r.CY}
}

// Clamp limits p to the rectangle. NaN coordinates are kept as is.
func (r Rect) Clamp(p Pos2D) Pos2D {
	upper := r.Max()
	return Pos2D{X: clamp(p.X, r.X, upper.X), Y: clamp(p.Y, r.Y, upper.Y)}
}

// Contains tests whether p is inside the rectangle, edges included.
func (r Rect) Contains(p Pos2D) bool {
	upper := r.Max()
	return p.X >= r.X && p.X <= upper.X && p.Y >= r.Y && p.Y <= upper.Y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
