package ports

import "github.com/bft-labs/termlink/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for application code.
var (
	String   = log.String
	Quoted   = log.Quoted
	Int      = log.Int
	Uint64   = log.Uint64
	Bool     = log.Bool
	Err      = log.Err
	Any      = log.Any
	Duration = log.Duration
)
