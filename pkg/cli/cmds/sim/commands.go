package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/pursuit/pkg/cli/sh"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/sim/bots/tracker"
	"github.com/robotalks/pursuit/pkg/sim/export"
)

func parseFloats(args []string, names ...string) ([]float64, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("%s required", names[len(args)])
	}
	vals := make([]float64, len(names))
	for n, name := range names {
		val, err := strconv.ParseFloat(args[n], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", name, err)
		}
		vals[n] = val
	}
	return vals, nil
}

// FormatStatus prints SimStatus for display.
func FormatStatus(st *msgs.SimStatus) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "state:  %s (source %s)\n", st.State, st.Source)
	if st.RunID != "" {
		fmt.Fprintf(&w, "run:    %s\n", st.RunID)
	}
	fmt.Fprintf(&w, "steps:  %d (t=%.3fs)\n", st.Steps, st.SimTime)
	fmt.Fprintf(&w, "pose:   (%.2f, %.2f) %.1f°\n", st.X, st.Y, st.Theta*180/math.Pi)
	fmt.Fprintf(&w, "target: (%.2f, %.2f)\n", st.TargetX, st.TargetY)
	if s := st.Setup; s != nil {
		fmt.Fprintf(&w, "setup:  x0=%g y0=%g theta0=%g k=%g l=%g dt=%g\n", s.X0, s.Y0, s.Theta0, s.K, s.L, s.Dt)
	}
	return w.String()
}

func simCmd(name, help string, fn func(c *ishell.Context)) *ishell.Cmd {
	return &ishell.Cmd{Name: name, Help: help, Func: sh.MustBeConnected(fn)}
}

var (
	// StatusCmd exposes SimStatusQuery.
	StatusCmd = ishell.Cmd{
		Name:    "sim.status",
		Aliases: []string{"ss"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			reply, err := s.Do(&msgs.SimStatusQuery{})
			if err != nil {
				c.Err(err)
				return
			}
			r, ok := reply.(*msgs.SimStatusReply)
			if !ok || s.OutputJSON || r.Status == nil {
				sh.PrintReply(c, reply)
				return
			}
			c.Print(FormatStatus(r.Status))
		}),
	}

	// StartCmd exposes SimStart.
	StartCmd = simCmd("sim.start", "", func(c *ishell.Context) {
		sh.DoCommand(c, &msgs.SimStart{})
	})

	// PauseCmd exposes SimPause.
	PauseCmd = simCmd("sim.pause", "", func(c *ishell.Context) {
		sh.DoCommand(c, &msgs.SimPause{})
	})

	// ResumeCmd exposes SimResume.
	ResumeCmd = simCmd("sim.resume", "", func(c *ishell.Context) {
		sh.DoCommand(c, &msgs.SimResume{})
	})

	// ResetCmd exposes SimReset.
	ResetCmd = simCmd("sim.reset", "", func(c *ishell.Context) {
		sh.DoCommand(c, &msgs.SimReset{})
	})

	// TargetCmd exposes SimSetTarget.
	TargetCmd = simCmd("sim.target", "X(mm) Y(mm)", func(c *ishell.Context) {
		vals, err := parseFloats(c.Args, "X", "Y")
		if err != nil {
			c.Err(err)
			return
		}
		sh.DoCommand(c, &msgs.SimSetTarget{X: vals[0], Y: vals[1]})
	})

	// SourceCmd exposes SimSelectSource.
	SourceCmd = simCmd("sim.source", "manual|feed", func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("SOURCE required"))
			return
		}
		sh.DoCommand(c, &msgs.SimSelectSource{Source: c.Args[0]})
	})

	// SetupCmd exposes SimConfigure.
	SetupCmd = simCmd("sim.setup", "X0 Y0 THETA0(degrees) K L DT(s)", func(c *ishell.Context) {
		vals, err := parseFloats(c.Args, "X0", "Y0", "THETA0", "K", "L", "DT")
		if err != nil {
			c.Err(err)
			return
		}
		sh.DoCommand(c, &msgs.SimConfigure{Setup: &msgs.SimSetup{
			X0: vals[0], Y0: vals[1], Theta0: vals[2], K: vals[3], L: vals[4], Dt: vals[5],
		}})
	})

	// LogCmd exposes SimLogQuery, printing the last records.
	LogCmd = simCmd("sim.log", "[LIMIT]", func(c *ishell.Context) {
		query := &msgs.SimLogQuery{Limit: 10}
		if len(c.Args) > 0 {
			limit, err := strconv.ParseUint(c.Args[0], 10, 32)
			if err != nil {
				c.Err(fmt.Errorf("invalid LIMIT: %v", err))
				return
			}
			query.Limit = uint32(limit)
		}
		s := sh.ShellFrom(c)
		reply, err := s.Do(query)
		if err != nil {
			c.Err(err)
			return
		}
		log, ok := reply.(*msgs.SimLog)
		if !ok || s.OutputJSON {
			sh.PrintReply(c, reply)
			return
		}
		var w bytes.Buffer
		export.WriteCSV(&w, tracker.RecordsFromMsg(log.Records))
		c.Print(w.String())
	})

	// ExportCmd saves the session log of the current run as CSV.
	ExportCmd = simCmd("sim.export", "FILE", func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("FILE required"))
			return
		}
		reply, err := sh.ShellFrom(c).Do(&msgs.SimLogQuery{})
		if err != nil {
			c.Err(err)
			return
		}
		log, ok := reply.(*msgs.SimLog)
		if !ok {
			c.Err(fmt.Errorf("unexpected reply %T", reply))
			return
		}
		if err := writeCSVFile(c.Args[0], log); err != nil {
			c.Err(err)
			return
		}
		c.Printf("%d records written to %s\n", len(log.Records), c.Args[0])
	})
)

func writeCSVFile(fn string, log *msgs.SimLog) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, tracker.RecordsFromMsg(log.Records)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	sh.AddCmds(
		&StatusCmd,
		StartCmd,
		PauseCmd,
		ResumeCmd,
		ResetCmd,
		TargetCmd,
		SourceCmd,
		SetupCmd,
		LogCmd,
		ExportCmd,
	)
}
