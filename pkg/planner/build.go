package planner

import (
	"math"
	"strings"

	"github.com/robotalks/pursuit/pkg/sim"
)

// Trajectory types.
const (
	TrajLine      = "line"
	TrajCircle    = "circle"
	TrajEllipse   = "ellipse"
	TrajFigure8   = "figure8"
	TrajSine      = "sine"
	TrajSquare    = "square"
	TrajRacetrack = "racetrack"
	TrajClothoid  = "clothoid"
	TrajSpiral    = "spiral"
	TrajSpline    = "spline"
	TrajAStar     = "astar"
	TrajRRTStar   = "rrtstar"
	TrajMPC       = "mpc"
)

// TrajSpec describes a trajectory in a command. Unset fields take the
// defaults of the type.
type TrajSpec struct {
	Type      string      `json:"type"`
	Center    *sim.Pos2D  `json:"center,omitempty"`
	End       *sim.Pos2D  `json:"end,omitempty"`
	Waypoints []sim.Pos2D `json:"waypoints,omitempty"`
	Speed     *float64    `json:"speed,omitempty"`
	Radius    *float64    `json:"radius,omitempty"`
	Period    *float64    `json:"period,omitempty"`
	Loops     *int        `json:"loops,omitempty"`
	A         *float64    `json:"a,omitempty"`
	B         *float64    `json:"b,omitempty"`
	Amp       *float64    `json:"amp,omitempty"`
	Freq      *float64    `json:"freq,omitempty"`
	Duration  *float64    `json:"duration,omitempty"`
	Length    *float64    `json:"length,omitempty"`
	KRate     *float64    `json:"k_rate,omitempty"`
	R0        *float64    `json:"r0,omitempty"`
	K         *float64    `json:"k,omitempty"`
}

// DefaultSquare is the path of a square without waypoints.
var DefaultSquare = []sim.Pos2D{
	{X: -300, Y: -200}, {X: 300, Y: -200}, {X: 300, Y: 200}, {X: -300, Y: 200}, {X: -300, Y: -200},
}

// DefaultSpeed is the speed (mm/s) of line and goto motions.
const DefaultSpeed = 150.0

// workspaceMargin keeps shapes off the workspace edges.
const workspaceMargin = 10.0

func or(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func orInt(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

// Build creates the trajectory starting at start. Sizes are limited so
// the shape fits in the workspace. Unknown types hold at start.
func (s *TrajSpec) Build(start sim.Pos2D, ws sim.Rect) (Trajectory, error) {
	center := sim.Pos2D{}
	if s.Center != nil {
		center = *s.Center
	}
	center = ws.Clamp(center)
	halfW, halfH := ws.CX/2-workspaceMargin, ws.CY/2-workspaceMargin
	period, loops := or(s.Period, 30), orInt(s.Loops, 0)

	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case TrajLine:
		end := start
		if s.End != nil {
			end = *s.End
		}
		return &LineTo{Target: ws.Clamp(end), Speed: or(s.Speed, DefaultSpeed)}, nil
	case TrajCircle:
		r := math.Min(or(s.Radius, 200), math.Min(halfW, halfH))
		return &Circle{Center: center, Radius: r, Period: period, Loops: loops}, nil
	case TrajEllipse:
		return &Ellipse{
			Center: center,
			A:      math.Min(math.Abs(or(s.A, 350)), halfW),
			B:      math.Min(math.Abs(or(s.B, 200)), halfH),
			Period: or(s.Period, 40),
			Loops:  loops,
		}, nil
	case TrajFigure8:
		return &Figure8{
			Center: center,
			A:      math.Min(math.Abs(or(s.A, 300)), halfW),
			B:      math.Min(math.Abs(or(s.B, 200)), halfH),
			Period: or(s.Period, 40),
			Loops:  loops,
		}, nil
	case TrajSine:
		if s.Center == nil {
			center = start
		}
		return &Sine{
			Center:   center,
			Amp:      math.Min(math.Abs(or(s.Amp, 120)), halfH),
			Freq:     or(s.Freq, 0.05),
			Speed:    or(s.Speed, 120),
			Duration: or(s.Duration, 30),
		}, nil
	case TrajSquare:
		points := s.Waypoints
		if len(points) < 2 {
			points = DefaultSquare
		}
		return NewWaypoints(clampAll(points, ws), or(s.Speed, DefaultSpeed), loops, true)
	case TrajRacetrack:
		r := or(s.Radius, 120)
		straight := math.Min(math.Abs(or(s.Length, 400)), ws.CX-2*r-2*workspaceMargin)
		return &Racetrack{
			Center:   center,
			Straight: straight,
			Radius:   math.Min(math.Abs(r), halfH),
			Speed:    or(s.Speed, DefaultSpeed),
			Loops:    loops,
		}, nil
	case TrajClothoid:
		return &Clothoid{KRate: or(s.KRate, 1e-5), Speed: or(s.Speed, 120), Duration: or(s.Duration, 30)}, nil
	case TrajSpiral:
		return &Spiral{Center: center, R0: or(s.R0, 20), K: or(s.K, 10), Period: period, Duration: or(s.Duration, 30)}, nil
	case TrajSpline, TrajAStar, TrajRRTStar, TrajMPC:
		// no obstacle map, planners degrade to a smooth path through the waypoints.
		points := s.Waypoints
		if len(points) < 2 {
			end := start
			if s.End != nil {
				end = *s.End
			}
			points = []sim.Pos2D{start, end}
		}
		return NewSpline(clampAll(points, ws), or(s.Duration, 30))
	}
	return &Hold{Target: start}, nil
}

func clampAll(points []sim.Pos2D, ws sim.Rect) []sim.Pos2D {
	out := make([]sim.Pos2D, len(points))
	for i, p := range points {
		out[i] = ws.Clamp(p)
	}
	return out
}
