// Package domain contains the core value types of termlink: endpoint read
// states, control locks, the events endpoints emit, and sentinel errors.
//
// This package has no dependencies on infrastructure concerns (timers,
// goroutines, logging). The frame buffer itself lives in pkg/framebuf.
//
// # Events
//
//   - [DataOut]: a frame written by an endpoint, to be routed to its peer
//   - [DataIn]: raw data appended to an endpoint's buffer
//   - [MessageRead]: a complete frame extracted by a read
//   - [ReadExpired]: a read that finished without a frame
//   - [StateChanged]: an endpoint moved between Idle and BusyReading
//   - [BufferChanged]: an endpoint's buffer content changed
package domain
