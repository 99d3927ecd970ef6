package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/reviewlens/internal/config"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/output"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/storage"
)

var (
	flagSummaryCSV string
	flagRunID      string
	flagProduct    string
	flagOut        string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Consolidate the attribute names of a finished run",
	Long: "Asks the model to merge duplicate attribute names and discard unusable ones. " +
		"Attributes come from a summary CSV (--summary) or from a run stored in SQLite (--sqlite, --run).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSummaryCSV == "" && flagSQLite == "" {
			return fmt.Errorf("one of --summary or --sqlite is required")
		}
		cfg, err := config.LoadFrom(flagConfig, buildOverrides())
		if err != nil {
			fail(&setupError{err})
			return nil
		}
		if err := runCleanup(cmd.Context(), cfg, os.Stdout); err != nil {
			fail(err)
		}
		return nil
	},
}

func runCleanup(ctx context.Context, cfg config.Config, out io.Writer) error {
	rows, err := loadSummaryRows(ctx, cfg)
	if err != nil {
		return err
	}
	attributes := report.Tables{Summary: rows}.Attributes()

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	product := flagProduct
	if product == "" {
		product = cfg.Category
	}
	cons, err := extract.Cleanup(ctx, gen, product, attributes)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cons, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if flagOut != "" {
		if err := os.WriteFile(flagOut, data, 0o644); err != nil {
			return fmt.Errorf("writing cleanup result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", flagOut)
		return nil
	}
	_, err = out.Write(data)
	return err
}

func loadSummaryRows(ctx context.Context, cfg config.Config) ([]report.SummaryRow, error) {
	if flagSummaryCSV != "" {
		f, err := os.Open(flagSummaryCSV)
		if err != nil {
			return nil, fmt.Errorf("opening summary: %w", err)
		}
		defer f.Close()
		return output.ReadSummaryCSV(f)
	}

	db, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	runID := flagRunID
	if runID == "" {
		runID, err = db.LatestRun(ctx, cfg.Category)
		if err != nil {
			return nil, err
		}
	}
	return db.Summary(ctx, runID)
}

func init() {
	cleanupCmd.Flags().StringVar(&flagSummaryCSV, "summary", "", "Summary CSV written by summarize")
	cleanupCmd.Flags().StringVar(&flagSQLite, "sqlite", "", "SQLite database written by summarize --sqlite")
	cleanupCmd.Flags().StringVar(&flagRunID, "run", "", "Run id in the database (default: latest run of --category)")
	cleanupCmd.Flags().StringVar(&flagCategory, "category", "", "Category of the run")
	cleanupCmd.Flags().StringVar(&flagProduct, "product", "", "Product name for the prompt (default: category)")
	cleanupCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider")
	cleanupCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cleanupCmd.Flags().StringVar(&flagOut, "out", "", "Write the result to this file instead of stdout")
}
