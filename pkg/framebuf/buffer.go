package framebuf

import (
	"strings"
	"unicode/utf8"
)

// Buffer is an append-only accumulation buffer with delimiter-based
// extraction. The zero value is an empty, unbounded buffer.
//
// Buffer is not safe for concurrent use; it is owned by a single endpoint.
type Buffer struct {
	data     string
	capacity int
}

// New creates an empty buffer. A capacity of zero or less means unbounded.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{capacity: capacity}
}

// Append concatenates data to the buffer. When a capacity is set only the
// most recent capacity characters are kept.
func (b *Buffer) Append(data string) {
	if data == "" {
		return
	}
	b.data += data
	b.truncate()
}

// ExtractMessage removes and returns the first complete frame.
//
// With a non-empty delimiter the message is the text strictly before the
// first occurrence of delimiter; the message and the delimiter are removed
// and the remainder stays buffered. With an empty delimiter the entire
// content is returned and the buffer is cleared. found is false, and the
// buffer untouched, when no frame is available.
func (b *Buffer) ExtractMessage(delimiter string) (message string, found bool) {
	if delimiter == "" {
		if b.data == "" {
			return "", false
		}
		message = b.data
		b.data = ""
		return message, true
	}

	idx := strings.Index(b.data, delimiter)
	if idx < 0 {
		return "", false
	}
	message = b.data[:idx]
	b.data = b.data[idx+len(delimiter):]
	return message, true
}

// Contains reports whether ExtractMessage(delimiter) would find a frame.
func (b *Buffer) Contains(delimiter string) bool {
	if delimiter == "" {
		return b.data != ""
	}
	return strings.Contains(b.data, delimiter)
}

// Clear discards all buffered content.
func (b *Buffer) Clear() {
	b.data = ""
}

// String returns the raw buffered content.
func (b *Buffer) String() string {
	return b.data
}

// Len returns the number of buffered characters.
func (b *Buffer) Len() int {
	return utf8.RuneCountInString(b.data)
}

// Capacity returns the configured capacity, zero when unbounded.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// SetCapacity changes the capacity and applies it to the current content.
func (b *Buffer) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	b.capacity = capacity
	b.truncate()
}

// truncate drops the oldest characters beyond capacity.
func (b *Buffer) truncate() {
	if b.capacity == 0 {
		return
	}
	excess := utf8.RuneCountInString(b.data) - b.capacity
	if excess <= 0 {
		return
	}
	cut := 0
	for i := 0; i < excess; i++ {
		_, size := utf8.DecodeRuneInString(b.data[cut:])
		cut += size
	}
	b.data = b.data[cut:]
}
