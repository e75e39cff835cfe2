package see

import (
	"strings"

	"github.com/robotalks/pursuit/pkg/sim"
)

// Object is the data model used to represents an object.
type Object map[string]interface{}

// Rect is object rect area.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pos is a position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObjectMapper rewrites the objects of a scene before they are sent,
// e.g. to attach images or styles. Returning nil hides the object.
type ObjectMapper interface {
	MapObject(Object) []Object
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(Object) []Object

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(obj Object) []Object {
	return f(obj)
}

// Message is the message for see.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropRect   = "rect"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropRotate = "rotate"
	PropStyle  = "style"
	PropStyles = "styles"
	PropPoints = "points"
)

// Object types
const (
	TypeCorner = "corner"
	TypeRobot  = "robot"
	TypePoint  = "point"
	TypeTarget = "target"
	TypePath   = "path"
)

// ObjectID converts object name to ID.
func ObjectID(name string) string {
	return strings.Replace(name, "/", ".", -1)
}

// NewObject creates Object.
func NewObject(typ, id string) Object {
	o := make(Object)
	o[PropID] = id
	o[PropType] = typ
	return o
}

// ObjectFromPose constructs an object placed and rotated per pose.
func ObjectFromPose(typ, id string, pose sim.Pose2D, radius float64) Object {
	return NewObject(typ, id).
		At(pose.X, pose.Y).
		Radius(radius).
		Rotate(pose.Orientation.Normalized().Degrees())
}

// Type returns the object type.
func (o Object) Type() string {
	typ, _ := o[PropType].(string)
	return typ
}

// Rc sets rect.
func (o Object) Rc(x, y, w, h float64) Object {
	o[PropRect] = &Rect{X: x, Y: y, W: w, H: h}
	return o
}

// At sets origin.
func (o Object) At(x, y float64) Object {
	o[PropOrigin] = &Pos{X: x, Y: y}
	return o
}

// Radius sets radius.
func (o Object) Radius(r float64) Object {
	o[PropRadius] = r
	return o
}

// Rotate sets rotate.
func (o Object) Rotate(deg float64) Object {
	o[PropRotate] = deg
	return o
}

// Points sets a polyline.
func (o Object) Points(pts []sim.Pos2D) Object {
	path := make([]Pos, len(pts))
	for n, pt := range pts {
		path[n] = Pos{X: pt.X, Y: pt.Y}
	}
	o[PropPoints] = path
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}
