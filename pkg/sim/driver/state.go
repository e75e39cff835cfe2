package driver

import (
	"errors"
	"fmt"
	"strings"
)

// State is the lifecycle state of the simulation.
type State int

// States
const (
	Idle State = iota
	Running
	Paused
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Source identifies where target updates come from.
type Source string

// Sources
const (
	SourceManual Source = "manual"
	SourceFeed   Source = "feed"
)

var (
	// ErrInvalidTransition indicates the lifecycle transition is not
	// allowed from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnknownSource indicates an unrecognized target source.
	ErrUnknownSource = errors.New("unknown target source")
)

// ParseSource parses the name of a Source.
func ParseSource(name string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(name))); src {
	case SourceManual, SourceFeed:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

func transitionErr(from State, action string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, from)
}
