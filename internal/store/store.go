// Package store keeps fetched puzzles as one JSON document per file in a
// flat directory. The store is append-only: documents are written once at
// fetch time and never edited. "Latest" means newest by modification
// time, and short id fragments resolve against the stored ids.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"sudoku_share_go/internal/types"
)

var (
	// ErrAmbiguousShortID reports an id fragment matching more than one
	// stored puzzle.
	ErrAmbiguousShortID = errors.New("ambiguous short id")
	// ErrNotFound reports a lookup that matched nothing.
	ErrNotFound = errors.New("puzzle not found")
)

// Doc is the stored form of a fetched puzzle plus its fetch metadata.
type Doc struct {
	Version    int     `json:"version"`
	CreatedUTC string  `json:"created_utc"`
	Preset     string  `json:"preset"`
	PresetDesc string  `json:"preset_desc,omitempty"`
	ID         string  `json:"id"`
	Size       int     `json:"size"`
	BoxWidth   int     `json:"boxWidth"`
	BoxHeight  int     `json:"boxHeight"`
	Givens     [][]int `json:"grid"`
	Solution   [][]int `json:"solution"`
	Difficulty string  `json:"difficulty,omitempty"`
	Letters    bool    `json:"letters,omitempty"`
	ShareKind  string  `json:"share_kind,omitempty"`
	ShareLink  string  `json:"share_link,omitempty"`
}

// NewDoc wraps a puzzle for storage.
func NewDoc(p *types.Puzzle, presetKey, presetDesc string) *Doc {
	return &Doc{
		Version:    2,
		CreatedUTC: time.Now().UTC().Format(stampLayout),
		Preset:     presetKey,
		PresetDesc: presetDesc,
		ID:         p.ID,
		Size:       p.Size,
		BoxWidth:   p.BoxWidth,
		BoxHeight:  p.BoxHeight,
		Givens:     p.Givens,
		Solution:   p.Solution,
		Difficulty: p.Difficulty,
		Letters:    p.Letters,
	}
}

// Puzzle revalidates the stored grids and rebuilds the model. Stored
// documents are untrusted on the way back in; a hand-edited file fails
// here rather than deeper in the pipeline.
func (d *Doc) Puzzle() (*types.Puzzle, error) {
	return types.NewPuzzle(d.ID, d.Size, d.Givens, d.Solution, d.Difficulty, d.Letters)
}

const stampLayout = "2006-01-02_150405Z"

// Store is a puzzle directory.
type Store struct {
	dir string
}

// Open ensures dir exists and returns the store for it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create puzzle dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir is <workspace>/sudoku/puzzles, with the workspace taken from
// SUDOKU_WORKSPACE or the current directory.
func DefaultDir() string {
	root := os.Getenv("SUDOKU_WORKSPACE")
	if root == "" {
		root = "."
	}
	return filepath.Join(root, "sudoku", "puzzles")
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Save writes the document atomically and returns its path. Filenames
// carry the stamp, preset, size and short id so directory listings are
// self-describing.
func (s *Store) Save(d *Doc) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal puzzle doc: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%dx%d_%s.json",
		d.CreatedUTC, d.Preset, d.Size, d.Size, types.ShortID(d.ID))
	path := filepath.Join(s.dir, name)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Paths lists the stored documents, oldest first.
func (s *Store) Paths() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle dir: %w", err)
	}

	type fileInfo struct {
		path string
		mod  time.Time
	}
	files := make([]fileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{filepath.Join(s.dir, e.Name()), info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// Load reads one stored document.
func (s *Store) Load(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var d Doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &d, nil
}

// Latest returns the newest stored document.
func (s *Store) Latest() (*Doc, string, error) {
	paths, err := s.Paths()
	if err != nil {
		return nil, "", err
	}
	if len(paths) == 0 {
		return nil, "", fmt.Errorf("%w: no puzzles stored yet in %s", ErrNotFound, s.dir)
	}
	path := paths[len(paths)-1]
	d, err := s.Load(path)
	if err != nil {
		return nil, "", err
	}
	return d, path, nil
}

var idFragmentPattern = regexp.MustCompile(`^[0-9A-Fa-f-]{1,64}$`)

// ByID resolves a full id or a short-id fragment (a prefix of the id, or
// of its first hyphen segment) to a stored document. Fragments matching
// puzzles with more than one distinct id fail with ErrAmbiguousShortID.
func (s *Store) ByID(fragment string) (*Doc, string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !idFragmentPattern.MatchString(fragment) {
		return nil, "", fmt.Errorf("%w: id fragment must be 1-64 hex characters or '-'", ErrNotFound)
	}
	needle := strings.ToLower(fragment)

	paths, err := s.Paths()
	if err != nil {
		return nil, "", err
	}

	var matchIDs []string
	var matchDoc *Doc
	var matchPath string
	// Newest first, so exact re-fetches resolve to the latest copy.
	for i := len(paths) - 1; i >= 0; i-- {
		d, err := s.Load(paths[i])
		if err != nil {
			continue
		}
		id := strings.ToLower(d.ID)
		if id != needle && !strings.HasPrefix(id, needle) {
			continue
		}
		if !containsString(matchIDs, id) {
			matchIDs = append(matchIDs, id)
		}
		if matchDoc == nil {
			matchDoc = d
			matchPath = paths[i]
		}
	}

	switch {
	case len(matchIDs) == 0:
		return nil, "", fmt.Errorf("%w: no stored puzzle matches id %q", ErrNotFound, fragment)
	case len(matchIDs) > 1:
		return nil, "", fmt.Errorf("%w: %q matches %d puzzles: %s",
			ErrAmbiguousShortID, fragment, len(matchIDs), strings.Join(matchIDs, ", "))
	}
	return matchDoc, matchPath, nil
}

// UsedIDs returns the ids of every stored puzzle, for skipping
// already-fetched puzzles on the next fetch.
func (s *Store) UsedIDs() (map[string]bool, error) {
	paths, err := s.Paths()
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(paths))
	for _, p := range paths {
		d, err := s.Load(p)
		if err != nil {
			continue
		}
		used[d.ID] = true
	}
	return used, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
