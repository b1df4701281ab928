package store

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudoku_share_go/internal/types"
)

func testPuzzle(t *testing.T, id string) *types.Puzzle {
	t.Helper()

	sol := make([][]int, 9)
	givens := make([][]int, 9)
	for r := 0; r < 9; r++ {
		sol[r] = make([]int, 9)
		givens[r] = make([]int, 9)
		for c := 0; c < 9; c++ {
			sol[r][c] = (r*3+r/3+c)%9 + 1
			if (r+c)%3 == 0 {
				givens[r][c] = sol[r][c]
			}
		}
	}
	p, err := types.NewPuzzle(id, 9, givens, sol, "easy9", false)
	require.NoError(t, err)
	return p
}

func saveOne(t *testing.T, s *Store, id string) string {
	t.Helper()
	path, err := s.Save(NewDoc(testPuzzle(t, id), "easy9", "Easy Classic"))
	require.NoError(t, err)
	return path
}

func TestSaveFilename(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	path := saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")

	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{6}Z_easy9_9x9_324306f5\.json$`)
	assert.Regexp(t, pattern, filepath.Base(path))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	p := testPuzzle(t, "324306f5-034d-4089-8723-56a8087fde14")
	doc := NewDoc(p, "easy9", "Easy Classic")
	path, err := s.Save(doc)
	require.NoError(t, err)

	loaded, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, "easy9", loaded.Preset)
	assert.Equal(t, p.ID, loaded.ID)

	restored, err := loaded.Puzzle()
	require.NoError(t, err)
	assert.Equal(t, p.FlatGivens(), restored.FlatGivens())
	assert.Equal(t, p.FlatSolution(), restored.FlatSolution())
}

func TestLatestPicksNewestByModTime(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	first := saveOne(t, s, "aaaaaaaa-0000-4000-8000-000000000001")
	second := saveOne(t, s, "bbbbbbbb-0000-4000-8000-000000000002")

	// Same-second saves share a timestamp, so separate the files by mtime
	// explicitly.
	now := time.Now()
	require.NoError(t, os.Chtimes(first, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(second, now.Add(-time.Hour), now.Add(-time.Hour)))

	doc, path, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbb-0000-4000-8000-000000000002", doc.ID)
	assert.Equal(t, second, path)
}

func TestLatestOnEmptyStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Latest()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByIDShortFragment(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")
	saveOne(t, s, "deadbeef-0000-4000-8000-000000000001")

	doc, _, err := s.ByID("324306f5")
	require.NoError(t, err)
	assert.Equal(t, "324306f5-034d-4089-8723-56a8087fde14", doc.ID)

	// A single character is enough when it is unambiguous.
	doc, _, err = s.ByID("d")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef-0000-4000-8000-000000000001", doc.ID)
}

func TestByIDAmbiguousFragment(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	saveOne(t, s, "abc11111-0000-4000-8000-000000000001")
	saveOne(t, s, "abc22222-0000-4000-8000-000000000002")

	_, _, err = s.ByID("abc")
	require.ErrorIs(t, err, ErrAmbiguousShortID)
}

func TestByIDSameIDTwiceIsNotAmbiguous(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")

	doc, _, err := s.ByID("324306f5")
	require.NoError(t, err)
	assert.Equal(t, "324306f5-034d-4089-8723-56a8087fde14", doc.ID)
}

func TestByIDRejectsBadFragments(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")

	for _, fragment := range []string{"", "   ", "zzzz", "nope!"} {
		_, _, err := s.ByID(fragment)
		require.ErrorIs(t, err, ErrNotFound, "fragment %q", fragment)
	}
}

func TestUsedIDs(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")
	saveOne(t, s, "deadbeef-0000-4000-8000-000000000001")

	used, err := s.UsedIDs()
	require.NoError(t, err)
	assert.Len(t, used, 2)
	assert.True(t, used["324306f5-034d-4089-8723-56a8087fde14"])
	assert.True(t, used["deadbeef-0000-4000-8000-000000000001"])
}

func TestCorruptedDocFailsRevalidation(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	path := saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")

	doc, err := s.Load(path)
	require.NoError(t, err)
	doc.Solution[0][0] = doc.Solution[0][1] // duplicate in row

	_, err = doc.Puzzle()
	require.ErrorIs(t, err, types.ErrInvalidPuzzleShape)
}

func TestPathsIgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	saveOne(t, s, "324306f5-034d-4089-8723-56a8087fde14")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	paths, err := s.Paths()
	require.NoError(t, err)
	require.Len(t, paths, 1)
}
