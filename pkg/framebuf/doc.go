// Package framebuf provides the delimiter-framed accumulation buffer used by
// termlink endpoints.
//
// A Buffer stores raw incoming text and hands out complete frames on demand.
// A frame ends at the first occurrence of the termination sequence passed to
// ExtractMessage; everything before it is the message, the sequence itself is
// consumed, and whatever follows stays buffered for the next extraction.
//
// # Usage
//
//	buf := framebuf.New(30)
//	buf.Append("hello\nwor")
//
//	msg, ok := buf.ExtractMessage("\n") // "hello", true
//	_, ok = buf.ExtractMessage("\n")    // "", false; "wor" stays buffered
//
// An empty termination sequence means "take everything": the whole buffer is
// returned as one message when it is non-empty.
//
// # Capacity
//
// A Buffer created with a positive capacity behaves as a sliding window over
// the most recent characters. Appending past capacity silently drops the
// oldest characters, including ones that were never read.
//
// # Presentation
//
// RenderPreview, Segments and Fill are read-only projections for display
// layers. Protocol logic never depends on them.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package framebuf
