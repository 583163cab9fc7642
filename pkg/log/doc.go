// Package log provides the logging abstraction used across termlink.
//
// Library code logs through the Logger interface and never imports a logging
// backend directly. A zerolog adapter and a no-op logger are provided.
//
//	logger := log.NewConsoleAdapter(os.Stderr, zerolog.DebugLevel)
//	ep := logger.With(log.String("endpoint", "client"))
//	ep.Info("write", log.Quoted("data", "hello\r\n"))
//
// Use ParseLevel to turn a configured level name into a zerolog level.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
package log
