package cliconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/termlink/pkg/framebuf"
)

// DecodeEscapes turns backslash escapes typed by a user, such as `\r\n`,
// `\t`, `\x03` or `\u00e9`, into the characters they stand for. Text
// without backslashes is returned unchanged.
func DecodeEscapes(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	rest := s
	for len(rest) > 0 {
		if strings.HasPrefix(rest, `\"`) || strings.HasPrefix(rest, `\'`) {
			b.WriteByte(rest[1])
			rest = rest[2:]
			continue
		}
		r, multibyte, tail, err := strconv.UnquoteChar(rest, 0)
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q", s)
		}
		if multibyte {
			b.WriteRune(r)
		} else {
			b.WriteByte(byte(r))
		}
		rest = tail
	}
	return b.String(), nil
}

// EncodeEscapes is the inverse of DecodeEscapes for display: control
// characters and backslashes become escapes.
func EncodeEscapes(s string) string {
	return framebuf.Preview(s, 0)
}
