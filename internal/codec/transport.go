package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTransportEncoding reports percent-encoded input that cannot
// be decoded.
var ErrMalformedTransportEncoding = errors.New("malformed transport encoding")

const upperhex = "0123456789ABCDEF"

// TransportEncode percent-encodes every byte outside the unreserved URL
// set (A-Z a-z 0-9 - _ . ~) so the result can sit in a URL path segment
// without reinterpretation. There are no safe-list exceptions: '+', '/'
// and '=' in particular are always escaped, since transports are known to
// rewrite them (a literal '+' silently becomes a space).
func TransportEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

// TransportDecode reverses TransportEncode.
func TransportDecode(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: truncated escape at index %d", ErrMalformedTransportEncoding, i)
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("%w: bad escape %q at index %d", ErrMalformedTransportEncoding, s[i:i+3], i)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
