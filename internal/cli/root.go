package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/reviewlens/internal/logging"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
	ExitDataError    = 5
)

var (
	flagConfig  string
	flagVerbose bool
)

// logger is built in PersistentPreRun once --verbose is known.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "reviewlens",
	Short: "Summarize product reviews by attribute with an LLM",
	Long: "reviewlens classifies customer reviews into product attributes with per-attribute sentiment, " +
		"then aggregates them into a summary table and an evidence table.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(flagVerbose, os.Stderr)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	// Provider credentials may live in a .env file in the working directory.
	_ = godotenv.Load()

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print reviewlens version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "reviewlens version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (JSON, or YAML with a .yaml/.yml extension)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}
