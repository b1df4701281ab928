package fetch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudoku_share_go/internal/types"
)

// kids4Data is a 4x4 record payload: 16 digits of givens followed by 16
// digits of solution.
const kids4Data = "1004041020030320" + "1234341221434321"

const kids4ID = "c5a1e230-9c70-4f5e-8e41-20c2e84f3b1d"

const pageHTML = `<!DOCTYPE html>
<html><head><script>
const preloadedPuzzles = [
  { 'id': '` + kids4ID + `', 'data': '` + kids4Data + `' },
  { 'id': '7d9a2a14-55a4-4e8f-9e2a-3f1b6c8d0e21', 'data': '` + kids4Data + `' },
  { 'id': '', 'data': 'junk entry without an id' }
];
</script></head><body>play [sudoku] here</body></html>`

func TestExtractPreloadedPuzzles(t *testing.T) {
	records, err := ExtractPreloadedPuzzles(pageHTML)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, kids4ID, records[0].ID)
	assert.Equal(t, kids4Data, records[0].Data)
}

func TestExtractPreloadedPuzzlesMissingArray(t *testing.T) {
	_, err := ExtractPreloadedPuzzles("<html><body>nothing here</body></html>")
	require.Error(t, err)
}

func TestExtractJSArrayHonorsStringsWithBrackets(t *testing.T) {
	html := `const preloadedPuzzles = [ { 'id': 'a]b', 'data': 'x' } ];`
	blob, err := extractJSArray(html, "preloadedPuzzles")
	require.NoError(t, err)
	assert.Contains(t, blob, "a]b")
}

func TestDecodeRecord(t *testing.T) {
	p, err := DecodeRecord(Record{ID: kids4ID, Data: kids4Data}, Presets["kids4n"])
	require.NoError(t, err)

	assert.Equal(t, 4, p.Size)
	assert.Equal(t, 2, p.BoxWidth)
	assert.Equal(t, 2, p.BoxHeight)
	assert.False(t, p.Letters)
	assert.Equal(t, []int{1, 0, 0, 4, 0, 4, 1, 0, 2, 0, 0, 3, 0, 3, 2, 0}, p.FlatGivens())
	assert.Equal(t, []int{1, 2, 3, 4, 3, 4, 1, 2, 2, 1, 4, 3, 4, 3, 2, 1}, p.FlatSolution())
}

func TestDecodeRecordLettersPreset(t *testing.T) {
	p, err := DecodeRecord(Record{ID: kids4ID, Data: kids4Data}, Presets["kids4l"])
	require.NoError(t, err)
	assert.True(t, p.Letters)
	assert.Equal(t, "kids4l", p.Difficulty)
}

func TestDecodeRecordErrors(t *testing.T) {
	t.Run("non-uuid id", func(t *testing.T) {
		_, err := DecodeRecord(Record{ID: "not-a-uuid", Data: kids4Data}, Presets["kids4n"])
		require.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := DecodeRecord(Record{ID: kids4ID, Data: "12345"}, Presets["kids4n"])
		require.Error(t, err)
	})

	t.Run("non-digit payload", func(t *testing.T) {
		bad := "x" + kids4Data[1:]
		_, err := DecodeRecord(Record{ID: kids4ID, Data: bad}, Presets["kids4n"])
		require.Error(t, err)
	})
}

func testBatch(t *testing.T) []*types.Puzzle {
	t.Helper()
	records, err := ExtractPreloadedPuzzles(pageHTML)
	require.NoError(t, err)

	batch := make([]*types.Puzzle, 0, len(records))
	for _, rec := range records {
		p, err := DecodeRecord(rec, Presets["kids4n"])
		require.NoError(t, err)
		batch = append(batch, p)
	}
	return batch
}

func TestPickPrefersFresh(t *testing.T) {
	batch := testBatch(t)
	require.Len(t, batch, 2)

	used := map[string]bool{batch[0].ID: true}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10; i++ {
		p := Pick(batch, used, rng)
		assert.Equal(t, batch[1].ID, p.ID, "only the unused puzzle is fresh")
	}
}

func TestPickEmptyBatch(t *testing.T) {
	assert.Nil(t, Pick(nil, nil, nil))
	assert.Nil(t, Pick([]*types.Puzzle{}, map[string]bool{"x": true}, nil))
}

func TestPickFallsBackWhenAllUsed(t *testing.T) {
	batch := testBatch(t)
	used := map[string]bool{batch[0].ID: true, batch[1].ID: true}

	p := Pick(batch, used, rand.New(rand.NewSource(1)))
	require.NotNil(t, p)
}

func TestPickByID(t *testing.T) {
	batch := testBatch(t)

	p, err := PickByID(batch, "c5a1e230")
	require.NoError(t, err)
	assert.Equal(t, kids4ID, p.ID)

	_, err = PickByID(batch, "ffffffff")
	require.Error(t, err)

	// Both test ids contain "e2".
	_, err = PickByID(batch, "e2")
	require.Error(t, err)

	_, err = PickByID(batch, "  ")
	require.Error(t, err)
}
