package framebuf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Ellipsis marks a preview that was cut to fit its width.
const Ellipsis = "…"

// SegmentKind classifies a piece of buffered content for display.
type SegmentKind int

const (
	// SegmentFrame is the body of a complete, not yet read frame.
	SegmentFrame SegmentKind = iota
	// SegmentDelimiter is a termination sequence ending a frame.
	SegmentDelimiter
	// SegmentPartial is trailing content with no termination sequence yet.
	SegmentPartial
	// SegmentUnframed is content viewed without any termination sequence.
	SegmentUnframed
)

// String returns a human-readable representation of the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentFrame:
		return "frame"
	case SegmentDelimiter:
		return "delimiter"
	case SegmentPartial:
		return "partial"
	case SegmentUnframed:
		return "unframed"
	default:
		return "unknown"
	}
}

// Segment is a contiguous run of buffered text of a single kind.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Fill describes how close a bounded buffer is to its capacity.
type Fill int

const (
	FillNormal Fill = iota
	FillAlmostFull
	FillFull
)

// Fill thresholds as fractions of capacity.
const (
	AlmostFullRatio = 0.6
	FullRatio       = 0.8
)

// String returns a human-readable representation of the fill level.
func (f Fill) String() string {
	switch f {
	case FillNormal:
		return "normal"
	case FillAlmostFull:
		return "almost-full"
	case FillFull:
		return "full"
	default:
		return "unknown"
	}
}

// Fill reports the fill level. Unbounded buffers are always FillNormal.
func (b *Buffer) Fill() Fill {
	if b.capacity == 0 {
		return FillNormal
	}
	ratio := float64(b.Len()) / float64(b.capacity)
	switch {
	case ratio >= FullRatio:
		return FillFull
	case ratio >= AlmostFullRatio:
		return FillAlmostFull
	default:
		return FillNormal
	}
}

// Segments splits the buffered content into frames, delimiters and the
// trailing partial frame as they would be seen by ExtractMessage(delimiter).
func (b *Buffer) Segments(delimiter string) []Segment {
	if b.data == "" {
		return nil
	}
	if delimiter == "" {
		return []Segment{{Kind: SegmentUnframed, Text: b.data}}
	}

	var segs []Segment
	rest := b.data
	for {
		idx := strings.Index(rest, delimiter)
		if idx < 0 {
			break
		}
		segs = append(segs,
			Segment{Kind: SegmentFrame, Text: rest[:idx]},
			Segment{Kind: SegmentDelimiter, Text: delimiter},
		)
		rest = rest[idx+len(delimiter):]
	}
	if rest != "" {
		segs = append(segs, Segment{Kind: SegmentPartial, Text: rest})
	}
	return segs
}

// RenderPreview returns a single-line view of the buffer for display.
// Control characters are shown as escapes (\r, \n, \t, \xNN) and the result
// is cut to maxWidth characters, ending in Ellipsis when content was dropped.
// A maxWidth of zero or less disables truncation.
func (b *Buffer) RenderPreview(maxWidth int) string {
	return Preview(b.data, maxWidth)
}

// Preview renders s the same way RenderPreview renders buffer content.
func Preview(s string, maxWidth int) string {
	tokens := make([]string, 0, len(s))
	total := 0
	for _, r := range s {
		tok := visible(r)
		tokens = append(tokens, tok)
		total += utf8.RuneCountInString(tok)
	}
	if maxWidth <= 0 || total <= maxWidth {
		return strings.Join(tokens, "")
	}

	var out strings.Builder
	width := 0
	for _, tok := range tokens {
		w := utf8.RuneCountInString(tok)
		if width+w > maxWidth-1 {
			break
		}
		out.WriteString(tok)
		width += w
	}
	out.WriteString(Ellipsis)
	return out.String()
}

func visible(r rune) string {
	switch r {
	case '\r':
		return `\r`
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf(`\x%02x`, r)
	}
	return string(r)
}
