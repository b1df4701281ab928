// Package codec implements the wire encodings of the share-link pipeline:
// the run-length compact form of a classic 9x9 grid and the percent
// encoding that makes compressed payloads safe inside a URL path segment.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the fixed 60-character output alphabet of the compact
// classic encoding; a character's value is its index. The ordering is a
// wire-format constant shared with the external renderer's decoder and
// must not change.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwx"

// Characters '1'..'9' encode given digits directly; the 50 letters encode
// blank runs of 1 ('A') through maxRun ('x'). Longer runs are split
// greedy largest-first.
const (
	runBase = 9
	maxRun  = len(Alphabet) - 1 - runBase // 50
)

const classicCells = 81

// ErrMalformedCompactEncoding reports compact input that cannot decode to
// exactly 81 cells.
var ErrMalformedCompactEncoding = errors.New("malformed compact encoding")

// EncodeClassic encodes a flat row-major 9x9 grid (81 cells, 0 = blank,
// 1..9 = given) into its compact string form.
func EncodeClassic(cells []int) (string, error) {
	if len(cells) != classicCells {
		return "", fmt.Errorf("compact encode: got %d cells, want %d", len(cells), classicCells)
	}

	var b strings.Builder
	run := 0
	flush := func() {
		for run > 0 {
			n := run
			if n > maxRun {
				n = maxRun
			}
			b.WriteByte(Alphabet[runBase+n])
			run -= n
		}
	}

	for i, v := range cells {
		switch {
		case v == 0:
			run++
		case v >= 1 && v <= 9:
			flush()
			b.WriteByte(Alphabet[v])
		default:
			return "", fmt.Errorf("compact encode: cell %d has value %d, want 0..9", i, v)
		}
	}
	flush()

	return b.String(), nil
}

// DecodeClassic is the exact inverse of EncodeClassic. It fails if an
// input character is outside the alphabet or if the expansion does not
// produce exactly 81 cells.
func DecodeClassic(s string) ([]int, error) {
	cells := make([]int, 0, classicCells)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		val := strings.IndexByte(Alphabet, ch)
		switch {
		case val >= 1 && val <= 9:
			cells = append(cells, val)
		case val > runBase:
			for n := val - runBase; n > 0; n-- {
				cells = append(cells, 0)
			}
		default:
			// val 0 ('0') never appears in valid output; val -1 is a
			// character outside the alphabet entirely.
			return nil, fmt.Errorf("%w: unrecognized character %q at index %d",
				ErrMalformedCompactEncoding, ch, i)
		}
		if len(cells) > classicCells {
			return nil, fmt.Errorf("%w: expansion exceeds %d cells at index %d",
				ErrMalformedCompactEncoding, classicCells, i)
		}
	}

	if len(cells) != classicCells {
		return nil, fmt.Errorf("%w: expansion produced %d cells, want %d",
			ErrMalformedCompactEncoding, len(cells), classicCells)
	}
	return cells, nil
}
