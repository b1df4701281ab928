package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"sudoku_share_go/db"
	"sudoku_share_go/internal/fetch"
	"sudoku_share_go/internal/reveal"
	"sudoku_share_go/internal/sharelink"
	"sudoku_share_go/internal/store"
	"sudoku_share_go/internal/types"
	"sudoku_share_go/internal/visualizer"
)

const usage = `Usage: sudoku <command> [flags]

Commands:
  list      List available presets
  get       Fetch a puzzle from a preset and store it
  render    Print a stored puzzle as ASCII
  share     Generate a share link for a stored puzzle
  reveal    Reveal the solution (full, one box, or one cell)
  publish   Mirror a stored puzzle to the remote archive
  remote    Browse the remote archive (list, get)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = cmdList(os.Args[2:])
	case "get":
		err = cmdGet(os.Args[2:])
	case "render":
		err = cmdRender(os.Args[2:])
	case "share":
		err = cmdShare(os.Args[2:])
	case "reveal":
		err = cmdReveal(os.Args[2:])
	case "publish":
		err = cmdPublish(os.Args[2:])
	case "remote":
		err = cmdRemote(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func cmdList(args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ExitOnError)
	asText := fs.Bool("text", false, "Output text instead of JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	presets := make([]fetch.Preset, 0, len(fetch.Presets))
	for _, key := range fetch.PresetKeys() {
		presets = append(presets, fetch.Presets[key])
	}

	if *asText {
		for _, p := range presets {
			fmt.Printf("- %s: %s\n  %s\n", p.Key, p.Desc, p.URL)
		}
		return nil
	}
	printJSON(map[string]any{"presets": presets})
	return nil
}

func cmdGet(args []string) error {
	fs := pflag.NewFlagSet("get", pflag.ExitOnError)
	id := fs.String("id", "", "Select puzzle by id fragment instead of randomly")
	render := fs.Bool("render", false, "Also print the puzzle grid")
	asText := fs.Bool("text", false, "Output text instead of JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("get needs exactly one preset argument (see: sudoku list)")
	}

	preset, ok := fetch.Presets[fs.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown preset %q (see: sudoku list)", fs.Arg(0))
	}

	st, err := store.Open(store.DefaultDir())
	if err != nil {
		return err
	}

	puzzles, err := fetch.NewClient().Fetch(context.Background(), preset)
	if err != nil {
		return err
	}

	var picked *types.Puzzle
	if *id != "" {
		picked, err = fetch.PickByID(puzzles, *id)
		if err != nil {
			return err
		}
	} else {
		used, err := st.UsedIDs()
		if err != nil {
			return err
		}
		picked = fetch.Pick(puzzles, used, nil)
	}

	doc := store.NewDoc(picked, preset.Key, preset.Desc)
	if picked.Size == 9 && !picked.Letters {
		link, err := sharelink.Encode(picked, sharelink.FormatNative)
		if err != nil {
			return err
		}
		doc.ShareKind = "native"
		doc.ShareLink = link
	}

	path, err := st.Save(doc)
	if err != nil {
		return err
	}

	if *asText {
		fmt.Printf("Stored: %s\n", path)
		if doc.ShareLink != "" {
			fmt.Printf("Share link (%s): %s\n", doc.ShareKind, doc.ShareLink)
		}
	} else {
		printJSON(map[string]any{
			"preset":      preset.Key,
			"puzzle_id":   picked.ID,
			"size":        picked.Size,
			"puzzle_json": path,
			"share_kind":  doc.ShareKind,
			"share_link":  doc.ShareLink,
		})
	}

	if *render {
		fmt.Print(visualizer.NewVisualizer(picked).Render(picked.Givens))
	}
	return nil
}

// loadPuzzle resolves --latest/--id to a stored puzzle.
func loadPuzzle(id string) (*types.Puzzle, string, error) {
	st, err := store.Open(store.DefaultDir())
	if err != nil {
		return nil, "", err
	}

	var doc *store.Doc
	var path string
	if id != "" {
		doc, path, err = st.ByID(id)
	} else {
		doc, path, err = st.Latest()
	}
	if err != nil {
		return nil, "", err
	}

	p, err := doc.Puzzle()
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}

func cmdRender(args []string) error {
	fs := pflag.NewFlagSet("render", pflag.ExitOnError)
	id := fs.String("id", "", "Puzzle id (full UUID or short id)")
	fs.Bool("latest", false, "Use latest stored puzzle (default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, _, err := loadPuzzle(*id)
	if err != nil {
		return err
	}
	fmt.Print(visualizer.NewVisualizer(p).Render(p.Givens))
	return nil
}

func cmdShare(args []string) error {
	fs := pflag.NewFlagSet("share", pflag.ExitOnError)
	id := fs.String("id", "", "Puzzle id (full UUID or short id)")
	fs.Bool("latest", false, "Use latest stored puzzle (default)")
	typ := fs.String("type", "native", "Link type: native, scl or fpuzzles")
	asText := fs.Bool("text", false, "Output text instead of JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := sharelink.ParseFormat(*typ)
	if err != nil {
		return err
	}

	p, path, err := loadPuzzle(*id)
	if err != nil {
		return err
	}

	link, err := sharelink.Encode(p, format)
	if err != nil {
		return err
	}

	if *asText {
		fmt.Println(link)
		return nil
	}
	printJSON(map[string]any{"puzzle_json": path, "share_link": link, "type": format.String()})
	return nil
}

func cmdReveal(args []string) error {
	fs := pflag.NewFlagSet("reveal", pflag.ExitOnError)
	id := fs.String("id", "", "Puzzle id (full UUID or short id)")
	fs.Bool("latest", false, "Use latest stored puzzle (default)")
	fs.Bool("full", false, "Reveal the full solution (default)")
	box := fs.Int("box", 0, "Reveal a single box (1-based index)")
	cell := fs.IntSlice("cell", nil, "Reveal a single cell: --cell ROW,COL (1-based)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, _, err := loadPuzzle(*id)
	if err != nil {
		return err
	}

	var state reveal.State
	switch {
	case len(*cell) == 2:
		// CLI coordinates are 1-based; the model is 0-based.
		state = reveal.Cell((*cell)[0]-1, (*cell)[1]-1)
	case len(*cell) != 0:
		return fmt.Errorf("--cell expects exactly two values: ROW,COL")
	case *box != 0:
		state = reveal.Box(*box - 1)
	default:
		state = reveal.Full()
	}

	grid, err := state.Apply(p)
	if err != nil {
		return err
	}

	if state.Mode == reveal.ModeCell {
		// Just the value, so it can be pasted or spoken.
		fmt.Println(types.CellLabel(grid[state.Row][state.Col], p.Letters))
		return nil
	}
	fmt.Print(visualizer.NewVisualizer(p).Render(grid))
	return nil
}

func cmdPublish(args []string) error {
	fs := pflag.NewFlagSet("publish", pflag.ExitOnError)
	id := fs.String("id", "", "Puzzle id (full UUID or short id)")
	fs.Bool("latest", false, "Use latest stored puzzle (default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.Open(store.DefaultDir())
	if err != nil {
		return err
	}

	var doc *store.Doc
	if *id != "" {
		doc, _, err = st.ByID(*id)
	} else {
		doc, _, err = st.Latest()
	}
	if err != nil {
		return err
	}

	if err := db.Connect(); err != nil {
		return err
	}
	if err := db.UploadPuzzle(doc); err != nil {
		return err
	}
	fmt.Printf("Mirrored puzzle %s\n", types.ShortID(doc.ID))
	return nil
}

func cmdRemote(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("remote needs a subcommand: list or get")
	}
	switch args[0] {
	case "list":
		return cmdRemoteList(args[1:])
	case "get":
		return cmdRemoteGet(args[1:])
	}
	return fmt.Errorf("unknown remote subcommand %q (want list or get)", args[0])
}

func cmdRemoteList(args []string) error {
	fs := pflag.NewFlagSet("remote list", pflag.ExitOnError)
	difficulty := fs.String("difficulty", "", "Filter by difficulty")
	size := fs.String("size", "", "Filter by grid size (4, 6 or 9)")
	page := fs.Int("page", 1, "Page number")
	perPage := fs.Int("per-page", 30, "Results per page")
	sortField := fs.String("sort", "created", "Sort field")
	sortOrder := fs.String("order", "desc", "Sort order: asc or desc")
	asText := fs.Bool("text", false, "Output text instead of JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters := map[string]string{}
	if *difficulty != "" {
		filters["difficulty"] = *difficulty
	}
	if *size != "" {
		filters["size"] = *size
	}

	if err := db.Connect(); err != nil {
		return err
	}
	result, err := db.ListPuzzles(*page, *perPage, filters, *sortField, *sortOrder)
	if err != nil {
		return err
	}

	if *asText {
		for _, item := range result.Items {
			fmt.Printf("- %v: %v %vx%v\n",
				item["short_id"], item["difficulty"], item["size"], item["size"])
		}
		fmt.Printf("%d mirrored puzzles total\n", result.TotalItems)
		return nil
	}
	printJSON(result)
	return nil
}

func cmdRemoteGet(args []string) error {
	fs := pflag.NewFlagSet("remote get", pflag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("remote get needs exactly one short id argument")
	}

	if err := db.Connect(); err != nil {
		return err
	}
	record, err := db.GetPuzzle(fs.Arg(0))
	if err != nil {
		return err
	}
	printJSON(record)
	return nil
}
