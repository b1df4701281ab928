// Package sharelink assembles the per-format share payloads and final
// links for the external puzzle-playing apps, and decodes them back for
// round-trip validation. The pipeline is: compact grid string -> JSON
// envelope -> dictionary compression -> transport-safe encoding -> base
// URL.
package sharelink

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sudoku_share_go/internal/codec"
	"sudoku_share_go/internal/lzstring"
	"sudoku_share_go/internal/types"
)

// ErrUnsupportedPuzzleFormat reports a share-link request for a puzzle
// variant with no codec mapping. Only classic 9x9 grids can be shared.
var ErrUnsupportedPuzzleFormat = errors.New("unsupported puzzle format")

// Format selects the share target.
type Format int

const (
	FormatNative Format = iota
	FormatSCL
	FormatFPuzzles
)

// ParseFormat maps the CLI selector to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "native", "sudokupad":
		return FormatNative, nil
	case "scl":
		return FormatSCL, nil
	case "fpuzzles", "f-puzzles":
		return FormatFPuzzles, nil
	}
	return 0, fmt.Errorf("unknown share format %q (want native, scl or fpuzzles)", s)
}

func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatSCL:
		return "scl"
	case FormatFPuzzles:
		return "fpuzzles"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Base URLs of the consuming apps. The payload is appended as a single
// path segment (query value for f-puzzles).
const (
	nativeBaseURL   = "https://sudokupad.app/puzzle"
	sclBaseURL      = "https://sudokupad.app/scl"
	fpuzzlesBaseURL = "https://f-puzzles.com/?load="
)

// nativeEnvelope is the SudokuPad metadata payload. Field order is part
// of the wire format; the JSON is serialized with no insignificant
// whitespace.
type nativeEnvelope struct {
	P string `json:"p"`
	N string `json:"n"`
	S string `json:"s"`
	M string `json:"m"`
}

// sclEnvelope is the generic SCL container.
type sclEnvelope struct {
	ID     string `json:"id"`
	Puzzle string `json:"puzzle"`
	Name   string `json:"name"`
	Msg    string `json:"msg"`
}

// fpuzzlesEnvelope carries the grid cell-by-cell the way f-puzzles loads
// it.
type fpuzzlesEnvelope struct {
	Size    int              `json:"size"`
	Title   string           `json:"title"`
	Ruleset string           `json:"ruleset"`
	Grid    [][]fpuzzlesCell `json:"grid"`
}

type fpuzzlesCell struct {
	Value int  `json:"value,omitempty"`
	Given bool `json:"given,omitempty"`
}

// Encode builds the share link for p in the selected format. Non-9x9
// puzzles (and letter variants) have no codec mapping and fail with
// ErrUnsupportedPuzzleFormat.
func Encode(p *types.Puzzle, f Format) (string, error) {
	if p.Size != 9 || p.Letters {
		return "", fmt.Errorf("%w: share links require a classic 9x9 puzzle, got %dx%d",
			ErrUnsupportedPuzzleFormat, p.Size, p.Size)
	}

	short := types.ShortID(p.ID)
	name := fmt.Sprintf("%s [%s]", DisplayName(p), short)
	msg := fmt.Sprintf("Check your answer against puzzle [%s] with the sudoku CLI when you are done.", short)

	var envelope any
	base := ""
	switch f {
	case FormatNative:
		compact, err := codec.EncodeClassic(p.FlatGivens())
		if err != nil {
			return "", err
		}
		envelope = nativeEnvelope{P: compact, N: name, S: "", M: msg}
		base = nativeBaseURL
	case FormatSCL:
		compact, err := codec.EncodeClassic(p.FlatGivens())
		if err != nil {
			return "", err
		}
		envelope = sclEnvelope{ID: short, Puzzle: compact, Name: name, Msg: msg}
		base = sclBaseURL
	case FormatFPuzzles:
		grid := make([][]fpuzzlesCell, p.Size)
		for r := 0; r < p.Size; r++ {
			grid[r] = make([]fpuzzlesCell, p.Size)
			for c := 0; c < p.Size; c++ {
				if v := p.Givens[r][c]; v != 0 {
					grid[r][c] = fpuzzlesCell{Value: v, Given: true}
				}
			}
		}
		envelope = fpuzzlesEnvelope{Size: p.Size, Title: name, Ruleset: msg, Grid: grid}
		base = fpuzzlesBaseURL
	default:
		return "", fmt.Errorf("%w: unknown format %v", ErrUnsupportedPuzzleFormat, f)
	}

	// json.Marshal emits no insignificant whitespace and keeps struct
	// field order, both of which the consumers rely on.
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("share envelope: %v", err)
	}

	payload := codec.TransportEncode(lzstring.CompressToBase64(string(data)))
	if f == FormatFPuzzles {
		return base + payload, nil
	}
	return base + "/" + payload, nil
}

// DecodePayload reverses Encode for validation and for reading stored
// links: it accepts a full link or a bare payload, peels the transport
// and compression layers, and returns the 81 givens row-major. Errors
// identify the stage that detected the corruption.
func DecodePayload(s string) ([]int, error) {
	payload := s
	for _, base := range []string{nativeBaseURL + "/", sclBaseURL + "/", fpuzzlesBaseURL} {
		if strings.HasPrefix(payload, base) {
			payload = payload[len(base):]
			break
		}
	}

	compressed, err := codec.TransportDecode(payload)
	if err != nil {
		return nil, err
	}
	text, err := lzstring.DecompressFromBase64(compressed)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: envelope is not valid JSON: %v",
			lzstring.ErrInvalidCompressedPayload, err)
	}

	for _, key := range []string{"p", "puzzle"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var compact string
		if err := json.Unmarshal(raw, &compact); err != nil {
			return nil, fmt.Errorf("envelope field %q: %v", key, err)
		}
		return codec.DecodeClassic(compact)
	}

	if raw, ok := fields["grid"]; ok {
		var grid [][]fpuzzlesCell
		if err := json.Unmarshal(raw, &grid); err != nil {
			return nil, fmt.Errorf("envelope field \"grid\": %v", err)
		}
		cells := make([]int, 0, 81)
		for _, row := range grid {
			for _, cell := range row {
				if cell.Given {
					cells = append(cells, cell.Value)
				} else {
					cells = append(cells, 0)
				}
			}
		}
		if len(cells) != 81 {
			return nil, fmt.Errorf("%w: grid has %d cells, want 81",
				codec.ErrMalformedCompactEncoding, len(cells))
		}
		return cells, nil
	}

	return nil, fmt.Errorf("envelope carries no puzzle payload field")
}

// DisplayName renders the user-facing title for a puzzle: "Easy Classic"
// style for the classic presets, "Kids 4x4" style for the kids grids.
func DisplayName(p *types.Puzzle) string {
	if p.Size != 9 {
		name := fmt.Sprintf("Kids %dx%d", p.Size, p.Size)
		if p.Letters {
			name += " Letters"
		}
		return name
	}
	difficulty := strings.TrimSuffix(p.Difficulty, "9")
	if difficulty == "" {
		difficulty = "easy"
	}
	return strings.ToUpper(difficulty[:1]) + difficulty[1:] + " Classic"
}
