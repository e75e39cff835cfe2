package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/l1/msgs"
)

func TestParseFloats(t *testing.T) {
	vals, err := parseFloats([]string{"1.5", "-2", "extra"}, "X", "Y")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, vals)

	_, err = parseFloats([]string{"1"}, "X", "Y")
	assert.EqualError(t, err, "Y required")
	_, err = parseFloats([]string{"a", "1"}, "X", "Y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid X")
}

func TestFormatStatus(t *testing.T) {
	out := FormatStatus(&msgs.SimStatus{
		State:   "running",
		Source:  "feed",
		RunID:   "r1",
		Steps:   20,
		SimTime: 1,
		X:       1.234,
		Theta:   3.14159265358979,
		Setup:   &msgs.SimSetup{K: 0.1, L: 50, Dt: 0.05},
	})
	assert.Contains(t, out, "state:  running (source feed)")
	assert.Contains(t, out, "run:    r1")
	assert.Contains(t, out, "steps:  20 (t=1.000s)")
	assert.Contains(t, out, "pose:   (1.23, 0.00) 180.0°")
	assert.Contains(t, out, "k=0.1 l=50 dt=0.05")

	out = FormatStatus(&msgs.SimStatus{State: "idle"})
	assert.NotContains(t, out, "run:")
	assert.NotContains(t, out, "setup:")
}

func TestWriteCSVFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeCSVFile(fn, &msgs.SimLog{Records: []*msgs.SimRecord{{T: 0.05, X: 1}}}))
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "0.05,1,"))
}
