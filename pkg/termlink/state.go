package termlink

import (
	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/pkg/framebuf"
)

// State represents the lifecycle state of a Session.
type State int

const (
	// StateStopped indicates the session is not running.
	StateStopped State = iota

	// StateStarting indicates the session is initializing.
	StateStarting

	// StateRunning indicates the session accepts endpoint operations.
	StateRunning

	// StateStopping indicates the session is shutting down.
	StateStopping

	// StateCrashed indicates the session failed to start or stop cleanly.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// CanStart returns true if Start() can be called from this state.
func (s State) CanStart() bool {
	return s == StateStopped || s == StateCrashed
}

// CanStop returns true if Stop() can be called from this state.
func (s State) CanStop() bool {
	return s == StateRunning || s == StateStarting
}

// IsRunning returns true if the session is running.
func (s State) IsRunning() bool {
	return s == StateRunning
}

// Endpoint-level types.
type (
	// ReadState is Idle or BusyReading.
	ReadState = domain.ReadState

	// Mode is the read mode of an endpoint.
	Mode = domain.Mode

	// Control is a set of endpoint controls.
	Control = domain.Control

	// Controls reports which controls are enabled.
	Controls = domain.Controls

	// Snapshot is a copy of an endpoint's configuration, state and buffer.
	Snapshot = domain.EndpointSnapshot

	// Segment is a run of buffered text classified for display.
	Segment = framebuf.Segment

	// Fill is a buffer's fill level relative to its capacity.
	Fill = framebuf.Fill
)

const (
	ReadIdle        = domain.StateIdle
	ReadBusyReading = domain.StateBusyReading

	ModeManual = domain.ModeManual
	ModeListen = domain.ModeListen

	ControlWrite          = domain.ControlWrite
	ControlRead           = domain.ControlRead
	ControlReadDelimiter  = domain.ControlReadDelimiter
	ControlWriteDelimiter = domain.ControlWriteDelimiter
	ControlTimeout        = domain.ControlTimeout
	ControlClear          = domain.ControlClear

	DefaultLocks = domain.DefaultLocks
	ListenLocks  = domain.ListenLocks
)

// ParseMode converts "manual" or "listen" into a Mode.
func ParseMode(s string) (Mode, bool) {
	return domain.ParseMode(s)
}
