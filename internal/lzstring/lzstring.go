// Package lzstring is a pinned Go port of the LZ-String dictionary
// compressor (pieroxy's lz-string 1.4.x, base64 variant). The consuming
// renderer decodes payloads with the JavaScript reference implementation,
// so this port must stay bit-compatible with it: dictionary growth,
// variable code widths, LSB-first bit packing and the base64 padding rule
// all follow the reference exactly. Do not "improve" the algorithm.
package lzstring

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

// ErrInvalidCompressedPayload reports compressed input that the decoder
// cannot interpret.
var ErrInvalidCompressedPayload = errors.New("invalid compressed payload")

const keyStrBase64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

const base64BitsPerChar = 6

// CompressToBase64 compresses s into the base64-alphabet encoding used by
// the reference implementation, padded with '=' to a multiple of four
// characters. Output is deterministic: equal inputs give byte-identical
// results.
func CompressToBase64(s string) string {
	res := compress(utf16.Encode([]rune(s)), base64BitsPerChar, func(v int) byte {
		return keyStrBase64[v]
	})
	switch len(res) % 4 {
	case 1:
		return res + "==="
	case 2:
		return res + "=="
	case 3:
		return res + "="
	}
	return res
}

// DecompressFromBase64 recovers the exact text passed to
// CompressToBase64.
func DecompressFromBase64(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrInvalidCompressedPayload)
	}
	units, err := decompress(len(s), 1<<(base64BitsPerChar-1), func(i int) (int, error) {
		if i >= len(s) {
			return 0, fmt.Errorf("%w: truncated input", ErrInvalidCompressedPayload)
		}
		v := strings.IndexByte(keyStrBase64, s[i])
		if v < 0 {
			return 0, fmt.Errorf("%w: character %q at index %d outside base64 alphabet",
				ErrInvalidCompressedPayload, s[i], i)
		}
		return v, nil
	})
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}

// dictKey gives []uint16 sequences a stable map key.
func dictKey(units []uint16) string {
	b := make([]byte, 2*len(units))
	for i, u := range units {
		b[2*i] = byte(u >> 8)
		b[2*i+1] = byte(u)
	}
	return string(b)
}

type bitWriter struct {
	data        []byte
	val         int
	pos         int
	bitsPerChar int
	charAt      func(int) byte
}

// writeBits emits the low n bits of value, least significant first,
// packing each output character most-significant-bit first.
func (w *bitWriter) writeBits(n, value int) {
	for i := 0; i < n; i++ {
		w.val = w.val<<1 | value&1
		if w.pos == w.bitsPerChar-1 {
			w.pos = 0
			w.data = append(w.data, w.charAt(w.val))
			w.val = 0
		} else {
			w.pos++
		}
		value >>= 1
	}
}

func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.pos == w.bitsPerChar-1 {
			w.data = append(w.data, w.charAt(w.val))
			return
		}
		w.pos++
	}
}

func compress(input []uint16, bitsPerChar int, charAt func(int) byte) string {
	w := &bitWriter{bitsPerChar: bitsPerChar, charAt: charAt}

	dict := make(map[string]int)
	dictToCreate := make(map[string]bool)
	var cur []uint16
	curKey := ""
	enlargeIn := 2
	dictSize := 3
	numBits := 2

	bumpNumBits := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	// produce emits the code for the current sequence: either the raw
	// first-seen character (prefixed with a 0 or 1 width marker) or its
	// dictionary code.
	produce := func() {
		if dictToCreate[curKey] {
			if cur[0] < 256 {
				w.writeBits(numBits, 0)
				w.writeBits(8, int(cur[0]))
			} else {
				w.writeBits(numBits, 1)
				w.writeBits(16, int(cur[0]))
			}
			bumpNumBits()
			delete(dictToCreate, curKey)
		} else {
			w.writeBits(numBits, dict[curKey])
		}
	}

	for _, c := range input {
		cKey := dictKey([]uint16{c})
		if _, ok := dict[cKey]; !ok {
			dict[cKey] = dictSize
			dictSize++
			dictToCreate[cKey] = true
		}

		wc := make([]uint16, len(cur)+1)
		copy(wc, cur)
		wc[len(cur)] = c
		wcKey := dictKey(wc)

		if _, ok := dict[wcKey]; ok {
			cur = wc
			curKey = wcKey
		} else {
			produce()
			bumpNumBits()
			dict[wcKey] = dictSize
			dictSize++
			cur = []uint16{c}
			curKey = cKey
		}
	}

	if len(cur) > 0 {
		produce()
		bumpNumBits()
	}

	// End-of-stream marker.
	w.writeBits(numBits, 2)
	w.flush()

	return string(w.data)
}

type bitReader struct {
	val        int
	position   int
	index      int
	resetValue int
	next       func(int) (int, error)
}

// readBits reads n bits, least significant first, consuming each input
// character from its most significant bit down.
func (r *bitReader) readBits(n int) (int, error) {
	bits := 0
	for power := 0; power < n; power++ {
		resb := r.val & r.position
		r.position >>= 1
		if r.position == 0 {
			r.position = r.resetValue
			v, err := r.next(r.index)
			if err != nil {
				return 0, err
			}
			r.val = v
			r.index++
		}
		if resb > 0 {
			bits |= 1 << power
		}
	}
	return bits, nil
}

func decompress(length, resetValue int, next func(int) (int, error)) ([]uint16, error) {
	first, err := next(0)
	if err != nil {
		return nil, err
	}
	r := &bitReader{val: first, position: resetValue, index: 1, resetValue: resetValue, next: next}

	// Entries 0..2 are the reserved control codes; real entries start at
	// index 3.
	dict := make([][]uint16, 3, 16)
	enlargeIn := 4
	dictSize := 4
	numBits := 3

	readChar := func(width int) ([]uint16, error) {
		bits, err := r.readBits(width)
		if err != nil {
			return nil, err
		}
		return []uint16{uint16(bits)}, nil
	}

	t, err := r.readBits(2)
	if err != nil {
		return nil, err
	}
	var entry []uint16
	switch t {
	case 0:
		entry, err = readChar(8)
	case 1:
		entry, err = readChar(16)
	case 2:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: bad leading code %d", ErrInvalidCompressedPayload, t)
	}
	if err != nil {
		return nil, err
	}
	dict = append(dict, entry)

	result := append([]uint16(nil), entry...)
	prev := entry

	for {
		if r.index > length {
			return nil, fmt.Errorf("%w: no end-of-stream marker", ErrInvalidCompressedPayload)
		}
		code, err := r.readBits(numBits)
		if err != nil {
			return nil, err
		}

		switch code {
		case 0, 1:
			ch, err := readChar(8 << code)
			if err != nil {
				return nil, err
			}
			dict = append(dict, ch)
			code = dictSize
			dictSize++
			enlargeIn--
		case 2:
			return result, nil
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		switch {
		case code < len(dict) && dict[code] != nil:
			entry = dict[code]
		case code == dictSize:
			// The classic LZW corner case: code refers to the entry being
			// built right now.
			entry = make([]uint16, len(prev)+1)
			copy(entry, prev)
			entry[len(prev)] = prev[0]
		default:
			return nil, fmt.Errorf("%w: dictionary code %d out of range", ErrInvalidCompressedPayload, code)
		}
		result = append(result, entry...)

		grown := make([]uint16, len(prev)+1)
		copy(grown, prev)
		grown[len(prev)] = entry[0]
		dict = append(dict, grown)
		dictSize++
		enlargeIn--

		prev = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
