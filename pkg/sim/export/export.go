// Package export serializes step logs.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/robotalks/pursuit/pkg/sim/driver"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"t", "x", "y", "theta", "ex", "ey", "V", "W", "targetX", "targetY"}

// CSVContentType is the media type of WriteCSV output.
const CSVContentType = "text/csv"

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, records []driver.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	row := make([]string, len(CSVHeader))
	for _, r := range records {
		for i, v := range []float64{r.T, r.X, r.Y, r.Theta, r.Ex, r.Ey, r.V, r.W, r.TargetX, r.TargetY} {
			row[i] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Window is the msgpack frame of the plot window.
type Window struct {
	RunID   string              `msgpack:"run"`
	Steps   uint64              `msgpack:"steps"`
	Records []driver.StepRecord `msgpack:"records"`
}

// EncodeWindow encodes the plot window.
func EncodeWindow(runID string, steps uint64, records []driver.StepRecord) ([]byte, error) {
	return msgpack.Marshal(&Window{RunID: runID, Steps: steps, Records: records})
}

// DecodeWindow decodes a frame from EncodeWindow.
func DecodeWindow(data []byte) (*Window, error) {
	var w Window
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
