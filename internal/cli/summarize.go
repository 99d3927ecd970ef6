package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/cache"
	"github.com/dshills/reviewlens/internal/config"
	"github.com/dshills/reviewlens/internal/dataset"
	"github.com/dshills/reviewlens/internal/extract"
	"github.com/dshills/reviewlens/internal/output"
	"github.com/dshills/reviewlens/internal/pipeline"
	"github.com/dshills/reviewlens/internal/providers"
	"github.com/dshills/reviewlens/internal/report"
	"github.com/dshills/reviewlens/internal/storage"
)

// Summarize flags
var (
	flagCategory    string
	flagNumReviews  int
	flagOutputName  string
	flagOutputDir   string
	flagDataDir     string
	flagProvider    string
	flagModel       string
	flagMixedPolicy string
	flagMaxWords    int
	flagMinReviews  int
	flagScanReviews int
	flagMaxAttempts int
	flagFormat      string
	flagArtifacts   string
	flagSeedVocab   string
	flagSQLite      string
	flagCleanup     bool
)

func addSummarizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCategory, "category", "", "Dataset category, e.g. Clothing_Shoes_and_Jewelry")
	cmd.Flags().IntVar(&flagNumReviews, "num-reviews", 0, "Number of reviews to classify")
	cmd.Flags().StringVar(&flagOutputName, "output-name", "", "Label for output files (default: run id)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Output directory or s3://bucket/prefix")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Directory holding <Category>.jsonl[.gz] and meta_<Category>.jsonl[.gz]")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider ("+strings.Join(providers.Names, ", ")+")")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagMixedPolicy, "mixed-policy", "", "How mixed sentiment is counted (both, neither, positive, negative)")
	cmd.Flags().IntVar(&flagMaxWords, "max-words", 0, "Skip reviews longer than this many words")
	cmd.Flags().IntVar(&flagMinReviews, "min-reviews", 0, "Minimum reviews the selected product must have")
	cmd.Flags().IntVar(&flagScanReviews, "scan-reviews", 0, "Number of review lines to scan when selecting a product")
	cmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 0, "Classification attempts per review")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Display format (text, markdown, json, none)")
	cmd.Flags().StringVar(&flagArtifacts, "artifacts", "", "Saved file formats, comma-separated (csv, json)")
	cmd.Flags().StringVar(&flagSeedVocab, "seed-vocab", "", "YAML/JSON file of attributes to start the vocabulary with")
	cmd.Flags().StringVar(&flagSQLite, "sqlite", "", "Also record the run in this SQLite database")
	cmd.Flags().BoolVar(&flagCleanup, "cleanup", false, "Consolidate the attribute vocabulary after the run")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	setString := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	setInt := func(key string, v int) {
		if v > 0 {
			m[key] = strconv.Itoa(v)
		}
	}
	setString("category", flagCategory)
	setInt("numReviews", flagNumReviews)
	setString("outputName", flagOutputName)
	setString("outputDir", flagOutputDir)
	setString("dataDir", flagDataDir)
	setString("provider", flagProvider)
	setString("model", flagModel)
	setString("mixedPolicy", flagMixedPolicy)
	setInt("maxWords", flagMaxWords)
	setInt("minReviews", flagMinReviews)
	setInt("scanReviews", flagScanReviews)
	setInt("maxAttempts", flagMaxAttempts)
	setString("format", flagFormat)
	setString("artifacts", flagArtifacts)
	setString("seedVocab", flagSeedVocab)
	setString("sqlitePath", flagSQLite)
	if flagCleanup {
		m["cleanup"] = "true"
	}
	return m
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Select a product, classify its reviews and write the attribute summary",
	Long: "Loads a dataset category, picks its most-reviewed product, classifies up to --num-reviews " +
		"reviews with the configured LLM and writes <category>_summary_<name>.csv and " +
		"<category>_details_<name>.csv under the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(flagConfig, buildOverrides())
		if err != nil {
			fail(&setupError{err})
			return nil
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runSummarize(ctx, cfg, os.Stdout); err != nil {
			fail(err)
		}
		return nil
	},
}

func newGenerator(cfg config.Config) (providers.Generator, error) {
	gen, err := providers.New(cfg.Provider, cfg.Model, providers.Options{
		Retries: cfg.Retries,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, &setupError{err}
	}
	return gen, nil
}

func openCache(cfg config.Config) (cache.Store, func(), error) {
	store, err := cache.Open(cache.Options{
		Enabled:       cfg.Cache.Enabled,
		Backend:       cfg.Cache.Backend,
		Dir:           cfg.Cache.Dir,
		TTLSeconds:    cfg.Cache.TTLSeconds,
		RedisAddr:     cfg.Cache.Redis.Addr,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	closeFn := func() {}
	if c, ok := store.(io.Closer); ok {
		closeFn = func() { _ = c.Close() }
	}
	return store, closeFn, nil
}

func runSummarize(ctx context.Context, cfg config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		return &setupError{err}
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	seed, err := extract.LoadSeed(cfg.SeedVocab)
	if err != nil {
		return &setupError{err}
	}
	store, closeCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	sel, err := dataset.Load(ctx, dataset.Options{
		Dir:         cfg.DataDir,
		Category:    cfg.Category,
		ScanReviews: cfg.ScanReviews,
		MinReviews:  cfg.MinReviews,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	retry := extract.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxAttempts
	p := &pipeline.Pipeline{
		Generator:   gen,
		Cache:       store,
		Retry:       retry,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      logger,
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rClassifying reviews: %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	}
	run, err := p.Summarize(ctx, pipeline.Request{
		Category:    cfg.Category,
		Product:     sel.Product,
		Reviews:     sel.Reviews,
		NumReviews:  cfg.NumReviews,
		MaxWords:    cfg.MaxWords,
		MixedPolicy: cfg.MixedPolicy,
		Seed:        seed,
		OutputName:  cfg.OutputName,
	})
	if err != nil {
		return err
	}

	pub, closePub, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePub()
	locations, err := pub.Publish(ctx, run)
	if err != nil {
		return err
	}
	for _, loc := range locations {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", loc)
	}

	if cfg.Cleanup {
		if err := runCleanupAfter(ctx, gen, pub, run); err != nil {
			return err
		}
	}

	return writer.Write(out, run)
}

func newPublisher(ctx context.Context, cfg config.Config) (*pipeline.Publisher, func(), error) {
	sink, err := storage.Open(ctx, cfg.OutputDir, storage.S3Options{
		Region:       cfg.S3.Region,
		Profile:      cfg.S3.Profile,
		UsePathStyle: cfg.S3.UsePathStyle,
	})
	if err != nil {
		return nil, nil, &setupError{err}
	}
	pub := &pipeline.Publisher{Sink: sink, Formats: cfg.Artifacts, Logger: logger}
	closeFn := func() {}
	if cfg.SQLitePath != "" {
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		pub.Store = db
		closeFn = func() { _ = db.Close() }
	}
	return pub, closeFn, nil
}

func runCleanupAfter(ctx context.Context, gen providers.Generator, pub *pipeline.Publisher, run *report.Run) error {
	cons, err := extract.Cleanup(ctx, gen, run.Product.Title, run.Tables.Attributes())
	if err != nil {
		// Best effort once the summary is saved.
		logger.Warn("vocabulary cleanup failed", zap.Error(err))
		return nil
	}
	data, err := json.MarshalIndent(cons, "", "  ")
	if err != nil {
		return err
	}
	loc, err := pub.PublishCleanup(ctx, run, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", loc)
	return nil
}

func init() {
	addSummarizeFlags(summarizeCmd)
}
