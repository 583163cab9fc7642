package log

import (
	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
)

// EventLogger implements ports.EventSink by writing every event to a logger.
// Traffic and buffer changes go to Debug; reads, expiries and state changes
// go to Info.
type EventLogger struct {
	logger ports.Logger
}

var _ ports.EventSink = (*EventLogger)(nil)

// NewEventLogger creates a sink logging to logger.
func NewEventLogger(logger ports.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Emit logs ev.
func (l *EventLogger) Emit(ev domain.Event) {
	src := ports.String("endpoint", ev.Source())

	switch e := ev.(type) {
	case domain.DataOut:
		l.logger.Debug("data out", src, ports.Quoted("data", e.Data))
	case domain.DataIn:
		l.logger.Debug("data in", src, ports.Quoted("data", e.Data))
	case domain.BufferChanged:
		l.logger.Debug("buffer changed", src,
			ports.Int("len", e.Len),
			ports.Int("capacity", e.Capacity),
			ports.String("fill", e.Fill.String()),
		)
	case domain.MessageRead:
		l.logger.Info("message read", src, ports.Quoted("message", e.Message))
	case domain.ReadExpired:
		if e.Cancelled {
			l.logger.Info("read cancelled", src, ports.Duration("waited", e.Waited))
			return
		}
		l.logger.Info("read expired", src, ports.Duration("waited", e.Waited))
	case domain.StateChanged:
		l.logger.Info("endpoint state", src,
			ports.String("from", e.Previous.String()),
			ports.String("to", e.Current.String()),
		)
	default:
		l.logger.Warn("unknown event", src)
	}
}
