package framebuf

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_ExtractMessage(t *testing.T) {
	tests := []struct {
		name      string
		contents  string
		delimiter string
		wantMsg   string
		wantFound bool
		wantRest  string
	}{
		{"newline frame", "hello\n", "\n", "hello", true, ""},
		{"leftover stays buffered", "hello\nwor", "\n", "hello", true, "wor"},
		{"first occurrence wins", "a\nb\nc\n", "\n", "a", true, "b\nc\n"},
		{"multi-char delimiter", "ping\r\npong", "\r\n", "ping", true, "pong"},
		{"partial delimiter is not a match", "ping\r", "\r\n", "", false, "ping\r"},
		{"empty frame", "\nrest", "\n", "", true, "rest"},
		{"case sensitive", "helloEND", "end", "", false, "helloEND"},
		{"no delimiter present", "hello", "\n", "", false, "hello"},
		{"empty delimiter takes everything", "hello\nworld", "", "hello\nworld", true, ""},
		{"empty delimiter on empty buffer", "", "", "", false, ""},
		{"regex characters are literal", "a.b*c", ".b*", "a", true, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(0)
			b.Append(tt.contents)

			msg, found := b.ExtractMessage(tt.delimiter)

			require.Equal(t, tt.wantFound, found)
			require.Equal(t, tt.wantMsg, msg)
			require.Equal(t, tt.wantRest, b.String())
		})
	}
}

func TestBuffer_EmptyDelimiterSemantics(t *testing.T) {
	b := New(0)
	b.Append("x")

	msg, found := b.ExtractMessage("")
	require.True(t, found)
	require.Equal(t, "x", msg)
	require.Equal(t, "", b.String())

	msg, found = b.ExtractMessage("")
	require.False(t, found)
	require.Equal(t, "", msg)
}

func TestBuffer_CapacityTruncation(t *testing.T) {
	b := New(5)
	b.Append("abcdef")
	require.Equal(t, "bcdef", b.String())

	b.Append("gh")
	require.Equal(t, "defgh", b.String())
	require.Equal(t, 5, b.Len())
}

func TestBuffer_CapacityCountsCharacters(t *testing.T) {
	b := New(3)
	b.Append("héllo")
	require.Equal(t, "llo", b.String())

	b.Append("ü")
	require.Equal(t, "loü", b.String())
}

func TestBuffer_SetCapacity(t *testing.T) {
	b := New(0)
	b.Append("0123456789")

	b.SetCapacity(4)
	require.Equal(t, "6789", b.String())
	require.Equal(t, 4, b.Capacity())

	b.SetCapacity(-1)
	require.Equal(t, 0, b.Capacity())
	b.Append("abc")
	require.Equal(t, "6789abc", b.String())
}

func TestBuffer_Clear(t *testing.T) {
	b := New(0)
	b.Append("data\n")
	b.Clear()

	require.Equal(t, 0, b.Len())
	_, found := b.ExtractMessage("\n")
	require.False(t, found)
}

func TestBuffer_Contains(t *testing.T) {
	b := New(0)
	require.False(t, b.Contains(""))
	b.Append("abc")
	require.True(t, b.Contains(""))
	require.True(t, b.Contains("bc"))
	require.False(t, b.Contains("\n"))
}

// For all s and non-empty d, Append(s); ExtractMessage(d) finds the text
// before the first occurrence of d and leaves exactly what follows it.
func TestBuffer_ExtractMatchesFirstOccurrence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("ab\r\n;")
	randString := func(max int) string {
		n := rng.Intn(max + 1)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		return sb.String()
	}

	for i := 0; i < 2000; i++ {
		s := randString(16)
		d := randString(3)
		if d == "" {
			d = "\n"
		}

		b := New(0)
		b.Append(s)
		msg, found := b.ExtractMessage(d)

		idx := strings.Index(s, d)
		if idx < 0 {
			require.False(t, found, "s=%q d=%q", s, d)
			require.Equal(t, s, b.String())
			continue
		}
		require.True(t, found, "s=%q d=%q", s, d)
		require.Equal(t, s[:idx], msg)
		require.Equal(t, s[idx+len(d):], b.String())
	}
}
