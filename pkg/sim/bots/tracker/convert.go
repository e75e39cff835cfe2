package tracker

import (
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/sim/driver"
)

// SetupToMsg converts a driver setup to its wire form.
func SetupToMsg(s driver.Setup) *msgs.SimSetup {
	return &msgs.SimSetup{X0: s.X0, Y0: s.Y0, Theta0: s.Theta0, K: s.K, L: s.L, Dt: s.Dt}
}

// SetupFromMsg converts the wire form to a driver setup.
func SetupFromMsg(m *msgs.SimSetup) driver.Setup {
	return driver.Setup{X0: m.X0, Y0: m.Y0, Theta0: m.Theta0, K: m.K, L: m.L, Dt: m.Dt}
}

// RecordsToMsg copies step records into their wire form.
func RecordsToMsg(records []driver.StepRecord) []*msgs.SimRecord {
	out := make([]*msgs.SimRecord, len(records))
	for n, r := range records {
		out[n] = &msgs.SimRecord{
			T: r.T, Ex: r.Ex, Ey: r.Ey, V: r.V, W: r.W,
			X: r.X, Y: r.Y, Theta: r.Theta,
			TargetX: r.TargetX, TargetY: r.TargetY,
		}
	}
	return out
}

// RecordsFromMsg converts wire records back to step records.
func RecordsFromMsg(records []*msgs.SimRecord) []driver.StepRecord {
	out := make([]driver.StepRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, driver.StepRecord{
			T: r.T, Ex: r.Ex, Ey: r.Ey, V: r.V, W: r.W,
			X: r.X, Y: r.Y, Theta: r.Theta,
			TargetX: r.TargetX, TargetY: r.TargetY,
		})
	}
	return out
}
