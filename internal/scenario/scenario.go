// Package scenario loads scripted termlink sessions from TOML files and runs
// them against a Session, checking the events each step produces.
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bft-labs/termlink/internal/adapters/responder"
	"github.com/bft-labs/termlink/pkg/termlink"
)

// DefaultWithin is how long an expectation waits when the step sets no
// "within".
const DefaultWithin = time.Second

// Actions understood by a step.
const (
	ActionWrite             = "write"
	ActionRead              = "read"
	ActionCancel            = "cancel"
	ActionClear             = "clear"
	ActionSetReadDelimiter  = "set_read_delimiter"
	ActionSetWriteDelimiter = "set_write_delimiter"
	ActionSetTimeout        = "set_timeout"
	ActionSetCapacity       = "set_capacity"
	ActionSleep             = "sleep"
	ActionExpectMessage     = "expect_message"
	ActionExpectExpired     = "expect_expired"
	ActionExpectBuffer      = "expect_buffer"
	ActionExpectState       = "expect_state"
)

var errInvalidScenario = errors.New("invalid scenario")

// Scenario is a parsed scenario file.
type Scenario struct {
	Name      string
	Config    termlink.Config
	Responder termlink.Responder
	Steps     []Step
}

// Step is one scripted action or expectation.
type Step struct {
	Action   string
	Endpoint string
	// Data is the payload, delimiter, message, buffer contents or state
	// name, depending on Action.
	Data string
	// Duration is the timeout for set_timeout and the pause for sleep.
	Duration time.Duration
	Capacity int
	// Within bounds how long an expect_message or expect_expired step waits.
	Within time.Duration
}

// String describes the step for reports.
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Action)
	if s.Endpoint != "" {
		b.WriteString(" ")
		b.WriteString(s.Endpoint)
	}
	switch s.Action {
	case ActionSetTimeout, ActionSleep:
		fmt.Fprintf(&b, " %s", s.Duration)
	case ActionSetCapacity:
		fmt.Fprintf(&b, " %d", s.Capacity)
	case ActionRead, ActionCancel, ActionClear, ActionExpectExpired:
	default:
		fmt.Fprintf(&b, " %q", s.Data)
	}
	return b.String()
}

type fileEndpoint struct {
	ReadDelimiter  string `toml:"read_delimiter"`
	WriteDelimiter string `toml:"write_delimiter"`
	Timeout        string `toml:"timeout"`
	Mode           string `toml:"mode"`
	Capacity       int    `toml:"capacity"`
	AutoRetry      bool   `toml:"auto_retry"`
}

type fileStep struct {
	Action   string `toml:"action"`
	Endpoint string `toml:"endpoint"`
	Data     string `toml:"data"`
	Duration string `toml:"duration"`
	Capacity int    `toml:"capacity"`
	Within   string `toml:"within"`
}

type fileScenario struct {
	Name      string       `toml:"name"`
	Responder string       `toml:"responder"`
	Seed      int64        `toml:"seed"`
	Client    fileEndpoint `toml:"client"`
	Server    fileEndpoint `toml:"server"`
	Steps     []fileStep   `toml:"step"`
}

// LoadFile reads and validates the scenario at path.
// Endpoint settings not present in the file keep termlink.DefaultConfig values.
func LoadFile(path string) (*Scenario, error) {
	var raw fileScenario
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown keys %s", errInvalidScenario, strings.Join(keys, ", "))
	}
	return build(raw, meta)
}

// Parse decodes a scenario from TOML text.
func Parse(data string) (*Scenario, error) {
	var raw fileScenario
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", errInvalidScenario, undecoded[0])
	}
	return build(raw, meta)
}

func build(raw fileScenario, meta toml.MetaData) (*Scenario, error) {
	sc := &Scenario{
		Name:   strings.TrimSpace(raw.Name),
		Config: termlink.DefaultConfig(),
	}
	if sc.Name == "" {
		sc.Name = "unnamed"
	}

	if err := applyEndpoint(&sc.Config.Client, raw.Client, meta, "client"); err != nil {
		return nil, err
	}
	if err := applyEndpoint(&sc.Config.Server, raw.Server, meta, "server"); err != nil {
		return nil, err
	}

	r, ok := responder.ByName(strings.TrimSpace(raw.Responder), raw.Seed)
	if !ok {
		return nil, fmt.Errorf("%w: unknown responder %q", errInvalidScenario, raw.Responder)
	}
	sc.Responder = r

	for i, fs := range raw.Steps {
		step, err := buildStep(fs)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func applyEndpoint(ep *termlink.EndpointConfig, raw fileEndpoint, meta toml.MetaData, name string) error {
	if meta.IsDefined(name, "read_delimiter") {
		ep.ReadDelimiter = raw.ReadDelimiter
	}
	if meta.IsDefined(name, "write_delimiter") {
		ep.WriteDelimiter = raw.WriteDelimiter
	}
	if meta.IsDefined(name, "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("%w: %s timeout: %v", errInvalidScenario, name, err)
		}
		ep.Timeout = d
	}
	if meta.IsDefined(name, "mode") {
		m, ok := termlink.ParseMode(strings.TrimSpace(raw.Mode))
		if !ok {
			return fmt.Errorf("%w: %s mode %q", errInvalidScenario, name, raw.Mode)
		}
		ep.Mode = m
	}
	if meta.IsDefined(name, "capacity") {
		ep.Capacity = raw.Capacity
	}
	if meta.IsDefined(name, "auto_retry") {
		ep.AutoRetry = raw.AutoRetry
	}
	return nil
}

func buildStep(fs fileStep) (Step, error) {
	step := Step{
		Action:   strings.TrimSpace(fs.Action),
		Endpoint: strings.TrimSpace(fs.Endpoint),
		Data:     fs.Data,
		Capacity: fs.Capacity,
		Within:   DefaultWithin,
	}

	if fs.Duration != "" {
		d, err := time.ParseDuration(fs.Duration)
		if err != nil {
			return Step{}, fmt.Errorf("%w: duration: %v", errInvalidScenario, err)
		}
		step.Duration = d
	}
	if fs.Within != "" {
		d, err := time.ParseDuration(fs.Within)
		if err != nil {
			return Step{}, fmt.Errorf("%w: within: %v", errInvalidScenario, err)
		}
		step.Within = d
	}

	switch step.Action {
	case ActionSleep:
		return step, nil
	case ActionWrite, ActionRead, ActionCancel, ActionClear,
		ActionSetReadDelimiter, ActionSetWriteDelimiter, ActionSetTimeout, ActionSetCapacity,
		ActionExpectMessage, ActionExpectExpired, ActionExpectBuffer:
	case ActionExpectState:
		if step.Data != termlink.ReadIdle.String() && step.Data != termlink.ReadBusyReading.String() {
			return Step{}, fmt.Errorf("%w: unknown state %q", errInvalidScenario, step.Data)
		}
	case "":
		return Step{}, fmt.Errorf("%w: missing action", errInvalidScenario)
	default:
		return Step{}, fmt.Errorf("%w: unknown action %q", errInvalidScenario, step.Action)
	}

	if step.Endpoint != termlink.ClientName && step.Endpoint != termlink.ServerName {
		return Step{}, fmt.Errorf("%w: %s needs endpoint client or server, got %q",
			errInvalidScenario, step.Action, step.Endpoint)
	}
	return step, nil
}
