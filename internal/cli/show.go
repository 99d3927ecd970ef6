package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/reviewlens/internal/config"
	"github.com/dshills/reviewlens/internal/output"
	"github.com/dshills/reviewlens/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a run stored in SQLite",
	Long:  "Reads a run saved with summarize --sqlite and prints its summary and evidence in the chosen format.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSQLite == "" {
			return fmt.Errorf("--sqlite is required")
		}
		cfg, err := config.LoadFrom(flagConfig, buildOverrides())
		if err != nil {
			fail(&setupError{err})
			return nil
		}
		if err := runShow(cmd.Context(), cfg, flagRunID, os.Stdout); err != nil {
			fail(err)
		}
		return nil
	},
}

func runShow(ctx context.Context, cfg config.Config, runID string, out io.Writer) error {
	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		return &setupError{err}
	}
	db, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID == "" {
		if runID, err = db.LatestRun(ctx, cfg.Category); err != nil {
			return err
		}
	}
	run, err := db.LoadRun(ctx, runID)
	if err != nil {
		return err
	}
	return writer.Write(out, run)
}

func init() {
	showCmd.Flags().StringVar(&flagSQLite, "sqlite", "", "SQLite database written by summarize --sqlite")
	showCmd.Flags().StringVar(&flagRunID, "run", "", "Run id (default: latest run of --category)")
	showCmd.Flags().StringVar(&flagCategory, "category", "", "Category of the run")
	showCmd.Flags().StringVar(&flagFormat, "format", "", "Display format (text, markdown, json)")
}
