package domain

// ReadState is the read state of an endpoint.
type ReadState int

const (
	StateIdle ReadState = iota
	StateBusyReading
)

// String returns a human-readable representation of the state.
func (s ReadState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBusyReading:
		return "BusyReading"
	default:
		return "Unknown"
	}
}

// Mode selects how an endpoint consumes incoming frames.
type Mode int

const (
	// ModeManual endpoints only read when asked to.
	ModeManual Mode = iota
	// ModeListen endpoints drain every complete frame as soon as it arrives
	// and hand it to their responder.
	ModeListen
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeListen:
		return "listen"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "manual":
		return ModeManual, true
	case "listen":
		return ModeListen, true
	default:
		return ModeManual, false
	}
}

// Control identifies a user-facing control a presentation layer exposes for
// an endpoint.
type Control uint8

const (
	ControlWrite Control = 1 << iota
	ControlRead
	ControlReadDelimiter
	ControlWriteDelimiter
	ControlTimeout
	ControlClear
)

// DefaultLocks are the controls disabled while a read is pending.
const DefaultLocks = ControlWrite | ControlRead | ControlReadDelimiter | ControlTimeout

// ListenLocks are the controls disabled for an endpoint in listen mode.
const ListenLocks = ControlWrite | ControlRead | ControlReadDelimiter | ControlWriteDelimiter

// Controls is the set of controls enabled for an endpoint at a point in time.
type Controls struct {
	Write          bool
	Read           bool
	ReadDelimiter  bool
	WriteDelimiter bool
	Timeout        bool
	Clear          bool
}

// ControlsFor derives which controls are enabled for the given state.
// locks applies while busy reading; listen mode always applies ListenLocks.
func ControlsFor(state ReadState, mode Mode, locks Control) Controls {
	var disabled Control
	if state == StateBusyReading {
		disabled |= locks
	}
	if mode == ModeListen {
		disabled |= ListenLocks
	}
	return Controls{
		Write:          disabled&ControlWrite == 0,
		Read:           disabled&ControlRead == 0,
		ReadDelimiter:  disabled&ControlReadDelimiter == 0,
		WriteDelimiter: disabled&ControlWriteDelimiter == 0,
		Timeout:        disabled&ControlTimeout == 0,
		Clear:          disabled&ControlClear == 0,
	}
}
