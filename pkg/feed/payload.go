// Package feed carries target positions published over MQTT.
package feed

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	fx "github.com/robotalks/pursuit/pkg/framework"
)

// Target is a target position in workspace coordinates (mm).
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Goal is the payload published by planners. Seq and TMs are
// informational, subscribers only read X and Y.
type Goal struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Seq uint64  `json:"seq"`
	TMs int64   `json:"t_ms"`
}

// TargetMsg delivers a parsed target into the loop.
type TargetMsg struct {
	Target
}

// NewMessage implements Message.
func (m *TargetMsg) NewMessage() fx.Message { return &TargetMsg{} }

// Formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ParsePayload accepts a JSON object with numeric x and y (other fields
// ignored), or two numbers separated by comma, semicolon or whitespace.
// Anything else, including non-finite values, is rejected.
func ParsePayload(data []byte) (Target, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Target{}, false
	}
	if data[0] == '{' {
		return parseJSON(data)
	}
	return parseText(string(data))
}

func parseJSON(data []byte) (Target, bool) {
	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj.X == nil || obj.Y == nil {
		return Target{}, false
	}
	return finite(*obj.X, *obj.Y)
}

func parseText(s string) (Target, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) != 2 {
		return Target{}, false
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Target{}, false
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Target{}, false
	}
	return finite(x, y)
}

func finite(x, y float64) (Target, bool) {
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Target{}, false
		}
	}
	return Target{X: x, Y: y}, true
}

// EncodeJSON builds a compact JSON payload.
func EncodeJSON(x, y float64) []byte {
	data, _ := json.Marshal(&Target{X: x, Y: y})
	return data
}

// EncodeCSV builds an "x,y" payload.
func EncodeCSV(x, y float64) []byte {
	return []byte(strconv.FormatFloat(x, 'g', -1, 64) + "," + strconv.FormatFloat(y, 'g', -1, 64))
}

// Encode builds a payload in the named format.
func Encode(format string, x, y float64) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(x, y), nil
	case FormatCSV:
		return EncodeCSV(x, y), nil
	}
	return nil, &ErrUnknownFormat{Format: format}
}

// EncodeGoal builds a planner goal payload. Coordinates are rounded to
// hundredths of mm.
func EncodeGoal(g Goal) ([]byte, error) {
	g.X, g.Y = math.Round(g.X*100)/100, math.Round(g.Y*100)/100
	return json.Marshal(&g)
}

// ErrUnknownFormat indicates an unsupported payload format.
type ErrUnknownFormat struct {
	Format string
}

// Error implements error.
func (e *ErrUnknownFormat) Error() string {
	return "unknown payload format: " + strconv.Quote(e.Format) + ", expect json or csv"
}
