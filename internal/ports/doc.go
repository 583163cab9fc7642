// Package ports defines the interfaces (ports) that connect the termlink
// application layer to its collaborators.
//
// # Port Interfaces
//
//   - [Scheduler]: the single logical thread endpoints run on, plus timers
//     whose expiry is delivered back onto that thread
//   - [EventSink]: receives endpoint events in emission order
//   - [Responder]: optional auto-reply capability for listening endpoints
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// The production scheduler is app.Loop; tests substitute a manual clock.
package ports
