package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/park285/offline-puzzles/internal/progress"
	"github.com/park285/offline-puzzles/internal/puzzle"
	"github.com/park285/offline-puzzles/internal/render"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderOut     string
	renderSize    int
	fetchDest     string
	importDB      string
	importBatch   int
	importReplace bool
	searchFormat  string
)

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "Search, render and download puzzles",
}

var puzzlesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "List puzzles matching the saved search filters",
	Long: `Lists puzzles matching the saved search filters, at most search_results_limit of them.
A search_results_limit of 0 (an empty field) caps the list at ` + strconv.Itoa(puzzle.MaxResults) + `.
--format csv writes the rows in lichess column order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if searchFormat != "links" && searchFormat != "csv" {
			return fmt.Errorf("unknown format %q", searchFormat)
		}
		ctx := cmd.Context()
		c := openStore().Load()
		repo, err := puzzle.OpenRepository(ctx, c.PuzzleDBLocation)
		if err != nil {
			return err
		}
		defer repo.Close()

		ps, err := repo.Search(ctx, puzzle.QueryFromConfig(c))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if searchFormat == "csv" {
			return puzzle.WriteCSV(out, ps)
		}
		if len(ps) == 0 {
			fmt.Fprintln(out, catalog.RenderOr("puzzle.search.none", "No puzzles match the current filters.", nil))
			return nil
		}
		for _, p := range ps {
			fmt.Fprintf(out, "%s\t%d\t%s\n", p.Link(), p.Rating, p.Themes)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), catalog.RenderOr("puzzle.search.found", fmt.Sprintf("Found %d puzzles.", len(ps)), map[string]any{"Count": len(ps)}))
		return nil
	},
}

var puzzlesRenderCmd = &cobra.Command{
	Use:   "render <puzzle-id>",
	Short: "Render the starting position of a puzzle as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := openStore().Load()
		repo, err := puzzle.OpenRepository(ctx, c.PuzzleDBLocation)
		if err != nil {
			return err
		}
		defer repo.Close()

		p, err := repo.Get(ctx, args[0])
		if err != nil {
			return err
		}
		s, err := puzzle.NewSession(p)
		if err != nil {
			return err
		}
		opts := render.Options{
			BoardTheme:  c.BoardTheme,
			PieceTheme:  c.PieceTheme,
			Flip:        (p.SolverSide() == settings.SideBlack) != c.FlipBoard,
			Coordinates: true,
		}
		if from, to, ok := s.LastMove(); ok {
			opts.Highlight = &render.Highlight{From: from, To: to}
		}
		png, err := render.New(render.WithSquareSize(renderSize)).RenderPNG(ctx, s.Position().Board(), opts)
		if err != nil {
			return err
		}
		out := renderOut
		if out == "" {
			out = p.PuzzleID + ".png"
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var puzzlesFetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download the lichess puzzle database",
	Long: `Downloads the puzzle dump to --dest, or to puzzle_db_location when --dest is empty.
A .zst dump is decompressed unless the destination also ends in .zst.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := cfg.PuzzleDBURL
		if len(args) == 1 {
			url = args[0]
		}
		dest := fetchDest
		if dest == "" {
			dest = openStore().Load().PuzzleDBLocation
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, catalog.RenderOr("download.started", "Downloading puzzle database from "+url, map[string]any{"URL": url}))

		dl := puzzle.NewDownloader(puzzle.WithDownloadTimeout(cfg.DownloadTimeout))
		n, err := dl.Download(cmd.Context(), url, dest)
		if err != nil {
			logger.Error("puzzle download failed", zap.String("url", url), zap.Error(err))
			fmt.Fprintln(out, catalog.RenderOr("download.failed", "Download failed: "+err.Error(), map[string]any{"Error": err.Error()}))
			return err
		}
		fmt.Fprintln(out, catalog.RenderOr("download.done",
			fmt.Sprintf("Puzzle database saved to %s (%d bytes).", dest, n),
			map[string]any{"Path": dest, "Bytes": n}))
		return nil
	},
}

var puzzlesImportCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Load a lichess CSV (.csv or .csv.zst) into PostgreSQL",
	Long: `Creates the puzzles table if needed and copies every row of the file into it.
The database is --db, or puzzle_db_location when --db is empty; it must be a
postgres:// or postgresql:// URL. Existing puzzle ids fail the import unless
--replace empties the table first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dsn := importDB
		if dsn == "" {
			dsn = openStore().Load().PuzzleDBLocation
		}
		if !puzzle.IsPostgresURL(dsn) {
			return fmt.Errorf("import target %q is not a postgres:// URL", dsn)
		}
		src, err := puzzle.OpenCSV(args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		repo, err := puzzle.OpenPostgres(ctx, dsn)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if importReplace {
			if err := repo.Truncate(ctx); err != nil {
				return err
			}
		}

		imported, skipped, err := puzzle.ImportCSV(ctx, repo, src, importBatch)
		logger.Info("puzzle import finished",
			zap.String("file", args[0]),
			zap.Int("imported", imported),
			zap.Int("skipped", skipped),
			zap.Error(err),
		)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d puzzles (%d malformed rows skipped)\n", imported, skipped)
		return nil
	},
}

var puzzlesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print solving progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, err := progress.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer store.Close()
		st, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "puzzles: %d\nsolved: %d\nattempts: %d\nfailures: %d\n",
			st.Puzzles, st.Solved, st.Attempts, st.Failures)
		return nil
	},
}

func init() {
	puzzlesRenderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "output file (default <puzzle-id>.png)")
	puzzlesRenderCmd.Flags().IntVar(&renderSize, "square-size", render.DefaultSquareSize, "square size in pixels")
	puzzlesFetchCmd.Flags().StringVar(&fetchDest, "dest", "", "destination file")
	puzzlesImportCmd.Flags().StringVar(&importDB, "db", "", "postgres URL (default puzzle_db_location)")
	puzzlesImportCmd.Flags().IntVar(&importBatch, "batch", puzzle.DefaultImportBatch, "rows per COPY transaction")
	puzzlesImportCmd.Flags().BoolVar(&importReplace, "replace", false, "empty the puzzles table before importing")
	puzzlesSearchCmd.Flags().StringVar(&searchFormat, "format", "links", "output format: links or csv")
	puzzlesCmd.AddCommand(puzzlesSearchCmd, puzzlesRenderCmd, puzzlesFetchCmd, puzzlesImportCmd, puzzlesStatsCmd)
}
