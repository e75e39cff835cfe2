// Package see is the adapter to visualize a 2D world in
// github.com/robotalks/see.
package see

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/pursuit/pkg/sim"
)

// Object IDs
const (
	IDRobot        = "robot"
	IDControlPoint = "robot.ctrl"
	IDTarget       = "target"
	IDTrail        = "robot.trail"
)

// Adapter renders scenes as see messages, one JSON array per line.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper
	Output io.Writer

	initial bool
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{
		Config:  config,
		Output:  os.Stdout,
		initial: true,
	}
}

// Render implements sim.SceneRenderer.
func (a *Adapter) Render(scene sim.Scene) {
	initial := a.initial
	msgs := a.Messages(scene)
	encoded, err := json.Marshal(msgs)
	if err != nil {
		a.initial = initial
		glog.Errorf("see: encode scene error: %v", err)
		return
	}
	if _, err := fmt.Fprintln(a.Output, string(encoded)); err != nil {
		glog.Errorf("see: write error: %v", err)
	}
}

// Messages builds the messages for a scene. The first call resets the
// view and places the workspace corners.
func (a *Adapter) Messages(scene sim.Scene) []Message {
	var msgs []Message
	if a.initial {
		hw, hh := a.Config.W/2, a.Config.H/2
		msgs = []Message{
			{Action: ActionReset},
			{Action: ActionObject, Object: NewObject(TypeCorner, "corner-lt").With("loc", "lt").At(-hw, -hh).Radius(1)},
			{Action: ActionObject, Object: NewObject(TypeCorner, "corner-lb").With("loc", "lb").At(-hw, hh).Radius(1)},
			{Action: ActionObject, Object: NewObject(TypeCorner, "corner-rt").With("loc", "rt").At(hw, -hh).Radius(1)},
			{Action: ActionObject, Object: NewObject(TypeCorner, "corner-rb").With("loc", "rb").At(hw, hh).Radius(1)},
		}
		a.initial = false
	}

	objs := []Object{
		NewObject(TypePath, IDTrail).Points(downsample(scene.Trajectory, a.Config.TrailPoints)),
		ObjectFromPose(TypeRobot, IDRobot, scene.Pose, a.Config.RobotSize/2),
		NewObject(TypePoint, IDControlPoint).At(scene.ControlPoint.X, scene.ControlPoint.Y).Radius(2),
		NewObject(TypeTarget, IDTarget).At(scene.Target.X, scene.Target.Y).Radius(5),
	}
	for _, obj := range objs {
		mapped := []Object{obj}
		if a.Mapper != nil {
			mapped = a.Mapper.MapObject(obj)
		}
		for _, o := range mapped {
			if o != nil {
				msgs = append(msgs, Message{Action: ActionObject, Object: o})
			}
		}
	}
	return msgs
}

// downsample keeps at most n points, always including the last one.
func downsample(pts []sim.Pos2D, n int) []sim.Pos2D {
	if n <= 0 || len(pts) <= n {
		return pts
	}
	out := make([]sim.Pos2D, 0, n)
	stride := float64(len(pts)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, pts[int(float64(i)*stride+0.5)])
	}
	out[n-1] = pts[len(pts)-1]
	return out
}
