package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/robotalks/pursuit/pkg/feed"
	"github.com/robotalks/pursuit/pkg/sim"
)

// Mode is what the planner is doing.
type Mode string

// Modes
const (
	ModeHold Mode = "hold"
	ModeTraj Mode = "traj"
	ModeStop Mode = "stop"
)

// Intents
const (
	IntentNoop   = "noop"
	IntentPause  = "pause"
	IntentResume = "resume"
	IntentStop   = "stop"
	IntentGoto   = "goto"
	IntentDelta  = "delta"
	IntentTraj   = "traj"
)

var (
	// ErrUnknownIntent indicates an intent not listed above.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrMissingCommand indicates a request without cmd.
	ErrMissingCommand = errors.New("cmd missing")
	// ErrMissingTraj indicates a traj intent without traj.
	ErrMissingTraj = errors.New("traj missing")
)

// Command is a planner command.
type Command struct {
	Intent string    `json:"intent"`
	X      *float64  `json:"x,omitempty"`
	Y      *float64  `json:"y,omitempty"`
	DX     *float64  `json:"dx,omitempty"`
	DY     *float64  `json:"dy,omitempty"`
	Traj   *TrajSpec `json:"traj,omitempty"`
}

// Request is the payload on the command topic.
type Request struct {
	Cmd *Command `json:"cmd"`
	TMs int64    `json:"t_ms,omitempty"`
}

// ParseRequest decodes a Request.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Status is published after each command.
type Status struct {
	OK     bool     `json:"ok"`
	Note   string   `json:"note"`
	TMs    int64    `json:"t_ms"`
	Mode   Mode     `json:"mode"`
	Paused bool     `json:"paused"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Cmd    *Command `json:"cmd,omitempty"`
}

// Planner turns commands into a goal per tick.
type Planner struct {
	Workspace sim.Rect
	// YDown negates y in published goals.
	YDown bool

	pos     sim.Pos2D
	seq     uint64
	mode    Mode
	paused  bool
	traj    Trajectory
	started time.Time
}

// New creates a Planner holding at the origin.
func New(ws sim.Rect) *Planner {
	return &Planner{Workspace: ws, mode: ModeHold, traj: &Hold{}}
}

// Position is the last sampled position.
func (p *Planner) Position() sim.Pos2D {
	return p.pos
}

// Mode returns the current mode.
func (p *Planner) Mode() Mode {
	return p.mode
}

// Paused indicates goals are frozen.
func (p *Planner) Paused() bool {
	return p.paused
}

// Seq is the sequence number of the next goal.
func (p *Planner) Seq() uint64 {
	return p.seq
}

// Apply executes a request and reports the outcome.
func (p *Planner) Apply(req *Request, now time.Time) *Status {
	if req == nil || req.Cmd == nil {
		return p.status(false, ErrMissingCommand.Error(), nil, now)
	}
	note, err := p.apply(req.Cmd, now)
	if err != nil {
		return p.status(false, err.Error(), req.Cmd, now)
	}
	return p.status(true, note, req.Cmd, now)
}

func (p *Planner) apply(cmd *Command, now time.Time) (string, error) {
	switch intent := strings.ToLower(strings.TrimSpace(cmd.Intent)); intent {
	case IntentNoop, "":
		return IntentNoop, nil
	case IntentPause:
		p.paused = true
		return "paused", nil
	case IntentResume:
		p.paused = false
		p.follow(p.traj, p.mode, now)
		return "resumed", nil
	case IntentStop:
		p.follow(&Hold{Target: p.pos}, ModeStop, now)
		return "stopped, holding current position", nil
	case IntentGoto, IntentDelta:
		target := p.pos
		if intent == IntentGoto {
			target.X, target.Y = or(cmd.X, p.pos.X), or(cmd.Y, p.pos.Y)
		} else {
			target.X += or(cmd.DX, 0)
			target.Y += or(cmd.DY, 0)
		}
		target = p.Workspace.Clamp(target)
		p.follow(&LineTo{Target: target, Speed: DefaultSpeed}, ModeTraj, now)
		return fmt.Sprintf("%s: line to (%.2f, %.2f)", intent, target.X, target.Y), nil
	case IntentTraj:
		if cmd.Traj == nil {
			return "", ErrMissingTraj
		}
		traj, err := cmd.Traj.Build(p.pos, p.Workspace)
		if err != nil {
			return "", fmt.Errorf("traj error: %w", err)
		}
		p.follow(traj, ModeTraj, now)
		return "traj set: " + cmd.Traj.Type, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
}

func (p *Planner) follow(traj Trajectory, mode Mode, now time.Time) {
	traj.Reset(p.pos)
	p.traj, p.mode, p.started = traj, mode, now
}

// Tick samples the trajectory and returns the goal to publish. A
// finished trajectory turns into holding its last point.
func (p *Planner) Tick(now time.Time) feed.Goal {
	if !p.paused {
		t := math.Max(0, now.Sub(p.started).Seconds())
		pos, done := p.traj.Sample(t)
		p.pos = p.Workspace.Clamp(pos)
		if done {
			p.follow(&Hold{Target: p.pos}, ModeHold, now)
		}
	}
	goal := feed.Goal{X: p.pos.X, Y: p.pos.Y, Seq: p.seq, TMs: now.UnixMilli()}
	if p.YDown {
		goal.Y = -goal.Y
	}
	p.seq++
	return goal
}

func (p *Planner) status(ok bool, note string, cmd *Command, now time.Time) *Status {
	return &Status{
		OK:     ok,
		Note:   note,
		TMs:    now.UnixMilli(),
		Mode:   p.mode,
		Paused: p.paused,
		X:      math.Round(p.pos.X*100) / 100,
		Y:      math.Round(p.pos.Y*100) / 100,
		Cmd:    cmd,
	}
}
