package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/reviewlens/internal/config"
	"github.com/dshills/reviewlens/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Env      string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "huggingface",
		Env:      "HF_TOKEN or HUGGINGFACEHUB_API_TOKEN",
		Models: []string{
			"mistralai/Mistral-7B-Instruct-v0.2",
			"meta-llama/Llama-3.1-8B-Instruct",
			"Qwen/Qwen2.5-7B-Instruct",
		},
	},
	{
		Provider: "anthropic",
		Env:      "ANTHROPIC_API_KEY",
		Models: []string{
			"claude-sonnet-4-20250514",
			"claude-haiku-4-5",
		},
	},
	{
		Provider: "openai",
		Env:      "OPENAI_API_KEY",
		Models: []string{
			"gpt-4.1-mini",
			"gpt-4o-mini",
			"gpt-4o",
		},
	},
	{
		Provider: "gemini",
		Env:      "GEMINI_API_KEY or GOOGLE_API_KEY",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "cohere",
		Env:      "COHERE_API_KEY",
		Models: []string{
			"command-r",
			"command-r-plus",
		},
	},
	{
		Provider: "ollama",
		Env:      "OLLAMA_HOST (optional)",
		Models: []string{
			"llama3.1",
			"mistral",
			"qwen2.5",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range knownModels {
			fmt.Fprintf(os.Stdout, "%s (%s):\n", info.Provider, info.Env)
			for _, m := range info.Models {
				fmt.Fprintf(os.Stdout, "  - %s\n", m)
			}
			fmt.Fprintln(os.Stdout)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(flagConfig, buildOverrides())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

		p, err := newGenerator(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, err = p.Generate(ctx, providers.Request{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = exitCodeFor(err)
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", cfg.Provider)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
