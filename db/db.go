// Package db mirrors the local puzzle store into a PocketBase collection
// so puzzles can be browsed from other devices. The local file store
// stays the source of truth; the mirror is strictly optional.
package db

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/habibrosyad/pocketbase-go-sdk"
	"github.com/joho/godotenv"

	"sudoku_share_go/internal/store"
	"sudoku_share_go/internal/types"
)

var client *pocketbase.Client

const collection = "puzzles"

// Connect loads credentials from the environment (or a .env file) and
// authenticates against the PocketBase instance. It also starts a
// re-authentication timer so long-running sessions stay valid.
func Connect() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Warning: No .env file found")
	}

	url := os.Getenv("POCKETBASE_URL")
	email := os.Getenv("POCKETBASE_EMAIL")
	password := os.Getenv("POCKETBASE_PASSWORD")
	if url == "" || email == "" || password == "" {
		return fmt.Errorf("POCKETBASE_URL, POCKETBASE_EMAIL and POCKETBASE_PASSWORD must be set")
	}

	client = pocketbase.NewClient(url,
		pocketbase.WithSuperuserEmailPassword(email, password))

	if err := client.Authorize(); err != nil {
		return fmt.Errorf("authentication failed: %v", err)
	}

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		for range ticker.C {
			if err := client.Authorize(); err != nil {
				fmt.Printf("⚠️ Re-authentication failed: %v\n", err)
			}
		}
	}()
	return nil
}

// UploadPuzzle pushes one stored document to the mirror. Records are
// keyed by short id; pushing an already-mirrored puzzle is an error.
func UploadPuzzle(d *store.Doc) error {
	if client == nil {
		return fmt.Errorf("not connected; call Connect first")
	}

	short := types.ShortID(d.ID)

	gridJSON, err := json.Marshal(map[string]any{
		"grid":      d.Givens,
		"solution":  d.Solution,
		"boxWidth":  d.BoxWidth,
		"boxHeight": d.BoxHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle data: %v", err)
	}

	exists, err := PuzzleExists(short)
	if err != nil {
		return fmt.Errorf("failed to check if puzzle exists: %v", err)
	}
	if exists {
		return fmt.Errorf("puzzle %s is already mirrored", short)
	}

	data := map[string]any{
		"short_id":   short,
		"source_id":  d.ID,
		"puzzle":     string(gridJSON),
		"preset":     d.Preset,
		"difficulty": d.Difficulty,
		"size":       fmt.Sprintf("%d", d.Size),
		"share_link": d.ShareLink,
	}

	if _, err := client.Create(collection, data); err != nil {
		return fmt.Errorf("failed to upload puzzle %s: %v", short, err)
	}
	return nil
}

// GetPuzzle fetches one mirrored record by short id.
func GetPuzzle(shortID string) (map[string]any, error) {
	if client == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	result, err := client.List(collection, pocketbase.ParamsList{
		Page: 1, Size: 1,
		Filters: fmt.Sprintf("short_id = %q", shortID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzle %s: %v", shortID, err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("puzzle %s is not mirrored", shortID)
	}

	record := result.Items[0]
	var puzzleData map[string]any
	if raw, ok := record["puzzle"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &puzzleData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal puzzle data: %v", err)
		}
	}
	for k, v := range puzzleData {
		record[k] = v
	}
	return record, nil
}

// ListPuzzles pages through the mirror with optional difficulty/size
// filters.
func ListPuzzles(page, perPage int, filters map[string]string, sortField, sortOrder string) (*pocketbase.ResponseList[map[string]any], error) {
	if client == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	result, err := client.List(collection, listParams(page, perPage, filters, sortField, sortOrder))
	return &result, err
}

// listParams translates the CLI-level paging/filter arguments into a
// PocketBase query.
func listParams(page, perPage int, filters map[string]string, sortField, sortOrder string) pocketbase.ParamsList {
	var filterRules []string
	if diff, ok := filters["difficulty"]; ok {
		filterRules = append(filterRules, fmt.Sprintf("difficulty = %q", diff))
	}
	if size, ok := filters["size"]; ok {
		filterRules = append(filterRules, fmt.Sprintf("size = %q", size))
	}

	sort := sortField
	if sortOrder == "desc" {
		sort = "-" + sortField
	}

	return pocketbase.ParamsList{
		Page:    page,
		Size:    perPage,
		Sort:    sort,
		Filters: strings.Join(filterRules, " && "),
	}
}

// PuzzleExists reports whether a short id is already mirrored.
func PuzzleExists(shortID string) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("not connected; call Connect first")
	}

	result, err := client.List(collection, pocketbase.ParamsList{
		Page: 1, Size: 1,
		Filters: fmt.Sprintf("short_id = %q", shortID),
	})
	if err != nil {
		return false, err
	}
	return len(result.Items) > 0, nil
}
