// Package fetch retrieves pre-made puzzles from sudokuonline.io. The site
// embeds a preloadedPuzzles array of object literals in its page HTML;
// the fetcher extracts that array, normalizes it to JSON and unpacks each
// record's data string into a validated puzzle.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"sudoku_share_go/internal/types"
)

// Preset is one of the site's puzzle feeds.
type Preset struct {
	Key     string `json:"preset"`
	Desc    string `json:"desc"`
	URL     string `json:"url"`
	Letters bool   `json:"letters"`
}

// Presets is the catalog of supported feeds.
var Presets = map[string]Preset{
	"kids4n":  {Key: "kids4n", Desc: "Kids 4x4", URL: "https://www.sudokuonline.io/kids/numbers-4-4"},
	"kids4l":  {Key: "kids4l", Desc: "Kids 4x4 with Letters", URL: "https://www.sudokuonline.io/kids/letters-4-4", Letters: true},
	"kids6":   {Key: "kids6", Desc: "Kids 6x6", URL: "https://www.sudokuonline.io/kids/numbers-6-6"},
	"kids6l":  {Key: "kids6l", Desc: "Kids 6x6 with Letters", URL: "https://www.sudokuonline.io/kids/letters-6-6", Letters: true},
	"easy9":   {Key: "easy9", Desc: "Classic 9x9 (Easy)", URL: "https://www.sudokuonline.io/easy"},
	"medium9": {Key: "medium9", Desc: "Classic 9x9 (Medium)", URL: "https://www.sudokuonline.io/medium"},
	"hard9":   {Key: "hard9", Desc: "Classic 9x9 (Hard)", URL: "https://www.sudokuonline.io/hard"},
	"evil9":   {Key: "evil9", Desc: "Classic 9x9 (Evil)", URL: "https://www.sudokuonline.io/evil"},
}

// PresetKeys returns the catalog keys in sorted order.
func PresetKeys() []string {
	keys := make([]string, 0, len(Presets))
	for k := range Presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record is one raw entry of the preloadedPuzzles array: a UUID and a
// packed digit string holding givens then solution (2*N*N digits, 0 for
// blank).
type Record struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// Client fetches puzzle pages.
type Client struct {
	http *resty.Client
}

// NewClient builds a fetch client with a sane timeout.
func NewClient() *Client {
	return &Client{
		http: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "sudoku-share/1.0"),
	}
}

// Fetch downloads the preset page and returns its embedded puzzles.
func (c *Client) Fetch(ctx context.Context, preset Preset) ([]*types.Puzzle, error) {
	resp, err := c.http.R().SetContext(ctx).Get(preset.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", preset.URL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: status %s", preset.URL, resp.Status())
	}

	records, err := ExtractPreloadedPuzzles(resp.String())
	if err != nil {
		return nil, err
	}

	puzzles := make([]*types.Puzzle, 0, len(records))
	for _, rec := range records {
		p, err := DecodeRecord(rec, preset)
		if err != nil {
			// The site occasionally ships malformed entries; skip them.
			continue
		}
		puzzles = append(puzzles, p)
	}
	if len(puzzles) == 0 {
		return nil, fmt.Errorf("no usable puzzles in %s", preset.URL)
	}
	return puzzles, nil
}

// ExtractPreloadedPuzzles pulls the preloadedPuzzles array out of page
// HTML. The array is scanned bracket-by-bracket with string-literal
// awareness because the page is not valid JSON.
func ExtractPreloadedPuzzles(html string) ([]Record, error) {
	blob, err := extractJSArray(html, "preloadedPuzzles")
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, obj := range splitObjects(blob) {
		// The site uses single-quoted keys and values; normalize to JSON.
		normalized := strings.ReplaceAll(obj, "'", `"`)
		var rec Record
		if err := json.Unmarshal([]byte(normalized), &rec); err != nil {
			continue
		}
		if rec.ID == "" || rec.Data == "" {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no parsable entries in preloadedPuzzles array")
	}
	return records, nil
}

// extractJSArray returns the text between the brackets of
// `const <name> = [...]`, honoring nested brackets and string literals.
func extractJSArray(html, name string) (string, error) {
	marker := "const " + name + " = ["
	pos := strings.Index(html, marker)
	if pos < 0 {
		return "", fmt.Errorf("could not find %s in HTML", name)
	}
	start := pos + len(marker) - 1

	depth := 0
	inString := false
	var quote byte
	escape := false

	for i := start; i < len(html); i++ {
		ch := html[i]

		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == quote:
				inString = false
			}
			continue
		}

		switch ch {
		case '\'', '"':
			inString = true
			quote = ch
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return html[start+1 : i], nil
			}
		}
	}

	return "", fmt.Errorf("could not parse %s array from HTML", name)
}

// splitObjects returns the top-level {...} chunks of an array body.
func splitObjects(blob string) []string {
	var objs []string
	depth := 0
	start := -1
	for i := 0; i < len(blob); i++ {
		switch blob[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				objs = append(objs, blob[start:i+1])
				start = -1
			}
		}
	}
	return objs
}

// DecodeRecord unpacks a raw record into a validated puzzle. The data
// string carries 2*N*N digits: givens row-major, then the solution.
func DecodeRecord(rec Record, preset Preset) (*types.Puzzle, error) {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return nil, fmt.Errorf("record id %q is not a UUID: %w", rec.ID, err)
	}

	size := 0
	switch len(rec.Data) {
	case 2 * 4 * 4:
		size = 4
	case 2 * 6 * 6:
		size = 6
	case 2 * 9 * 9:
		size = 9
	default:
		return nil, fmt.Errorf("record %s: data has %d digits, want 32, 72 or 162",
			rec.ID, len(rec.Data))
	}

	givens, err := parseDigits(rec.Data[:size*size], size)
	if err != nil {
		return nil, fmt.Errorf("record %s givens: %w", rec.ID, err)
	}
	solution, err := parseDigits(rec.Data[size*size:], size)
	if err != nil {
		return nil, fmt.Errorf("record %s solution: %w", rec.ID, err)
	}

	return types.NewPuzzle(rec.ID, size, givens, solution, preset.Key, preset.Letters)
}

func parseDigits(s string, size int) ([][]int, error) {
	grid := make([][]int, size)
	for r := 0; r < size; r++ {
		grid[r] = make([]int, size)
		for c := 0; c < size; c++ {
			ch := s[r*size+c]
			if ch < '0' || ch > '9' {
				return nil, fmt.Errorf("non-digit %q at cell %d", ch, r*size+c)
			}
			grid[r][c] = int(ch - '0')
		}
	}
	return grid, nil
}

// Pick chooses a random puzzle, preferring ones whose id is not in used.
// Every puzzle was used already falls back to the full batch. An empty
// batch yields nil.
func Pick(puzzles []*types.Puzzle, used map[string]bool, rng *rand.Rand) *types.Puzzle {
	if len(puzzles) == 0 {
		return nil
	}
	fresh := make([]*types.Puzzle, 0, len(puzzles))
	for _, p := range puzzles {
		if !used[p.ID] {
			fresh = append(fresh, p)
		}
	}
	pool := fresh
	if len(pool) == 0 {
		pool = puzzles
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return pool[rng.Intn(len(pool))]
}

// PickByID selects the batch puzzle whose id contains fragment, failing
// when the fragment is missing or matches more than one puzzle.
func PickByID(puzzles []*types.Puzzle, fragment string) (*types.Puzzle, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return nil, fmt.Errorf("puzzle id cannot be empty")
	}

	var matches []*types.Puzzle
	for _, p := range puzzles {
		if strings.Contains(strings.ToLower(p.ID), needle) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("puzzle id fragment not found: %s", fragment)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, 0, len(matches))
	for _, p := range matches {
		ids = append(ids, p.ID)
	}
	return nil, fmt.Errorf("puzzle id fragment is ambiguous (%d matches): %s",
		len(matches), strings.Join(ids, ", "))
}
