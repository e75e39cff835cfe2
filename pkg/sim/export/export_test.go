package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/sim/driver"
)

func TestWriteCSV(t *testing.T) {
	records := []driver.StepRecord{
		{T: 0.05, X: 1.5, Y: -2, Theta: 0.1, Ex: -50, Ey: -100, V: 5, W: 0.2, TargetX: 100, TargetY: 100},
		{T: 0.1, X: math.NaN(), Y: math.Inf(1)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "t,x,y,theta,ex,ey,V,W,targetX,targetY", joinRow(rows[0]))
	require.Equal(t, "0.05,1.5,-2,0.1,-50,-100,5,0.2,100,100", joinRow(rows[1]))
	require.Equal(t, "0.1,NaN,+Inf,0,0,0,0,0,0,0", joinRow(rows[2]))
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, "t,x,y,theta,ex,ey,V,W,targetX,targetY\n", buf.String())
}

func TestEncodeWindow(t *testing.T) {
	records := []driver.StepRecord{{T: 0.05, X: 1}, {T: 0.1, X: 2}}
	data, err := EncodeWindow("run-1", 2, records)
	require.NoError(t, err)
	w, err := DecodeWindow(data)
	require.NoError(t, err)
	require.Equal(t, "run-1", w.RunID)
	require.Equal(t, uint64(2), w.Steps)
	require.Equal(t, records, w.Records)

	_, err = DecodeWindow([]byte{0xc1})
	require.Error(t, err)
}

func joinRow(row []string) string {
	var buf bytes.Buffer
	for i, c := range row {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(c)
	}
	return buf.String()
}
