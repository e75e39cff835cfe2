package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectClamp(t *testing.T) {
	ws := RectAround(300, 200)
	testCases := []struct {
		name   string
		in     Pos2D
		expect Pos2D
	}{
		{name: "inside", in: Pos2D{X: 10, Y: -20}, expect: Pos2D{X: 10, Y: -20}},
		{name: "right", in: Pos2D{X: 400, Y: 0}, expect: Pos2D{X: 300, Y: 0}},
		{name: "bottom left", in: Pos2D{X: -1000, Y: -1000}, expect: Pos2D{X: -300, Y: -200}},
		{name: "edge", in: Pos2D{X: 300, Y: 200}, expect: Pos2D{X: 300, Y: 200}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, ws.Clamp(tc.in))
			require.True(t, ws.Contains(ws.Clamp(tc.in)))
		})
	}
}

func TestAngleUnbounded(t *testing.T) {
	a := AngleFromDegrees(350).AddDegrees(30)
	require.InDelta(t, 380, a.Degrees(), 1e-9)
	require.InDelta(t, 20, a.Normalized().Degrees(), 1e-9)
	require.InDelta(t, 180, AngleFromDegrees(-180).Normalized().Degrees(), 1e-9)
	require.InDelta(t, math.Pi, AngleFromRadians(3*math.Pi).Normalized().Radians(), 1e-9)
}

func TestSceneCaster(t *testing.T) {
	var c SceneCaster
	var got []Scene
	c.AddRenderer(RenderSceneFunc(func(s Scene) { got = append(got, s) }))
	c.AddRenderer(RenderSceneFunc(func(s Scene) { got = append(got, s) }))
	c.Render(Scene{Target: Pos2D{X: 1, Y: 2}})
	require.Equal(t, 2, c.Len())
	require.Len(t, got, 2)
	require.Equal(t, Pos2D{X: 1, Y: 2}, got[1].Target)
}
