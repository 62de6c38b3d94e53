// Package cli implements the proethica command-line tool. The commands run
// the scoring and citation pipelines in-process, without the API server, so
// the tool works against nothing but a config file (and an LLM key for the
// judge-backed paths).
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/intelligence/llm"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	JSONOutput bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "proethica",
		Short:   "Guideline-to-section relevance and citation tooling",
		Long:    "proethica scores case-document sections against ethics guideline statements\nand extracts code-provision citations from case text.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (environment variables used when empty)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.JSONOutput, "json", false, "emit results as JSON")

	cmd.AddCommand(
		newAssessCmd(opts),
		newCitationsCmd(opts),
	)
	return cmd
}

// Execute runs the CLI and reports the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig resolves configuration from the --config file when given,
// otherwise from environment variables.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	return config.LoadFromEnv()
}

// buildLogger creates a console logger on stderr so stdout stays clean for
// command output.
func buildLogger(opts *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// buildCompleter dials the LLM when a key is configured. A nil return with
// nil error means the judge-backed stages run degraded, which the pipelines
// tolerate.
func buildCompleter(ctx context.Context, cfg *config.Config, log logging.Logger) (llm.Completer, func(), error) {
	if cfg.LLM.APIKey == "" {
		log.Warn("llm api key not configured; judge and validator run degraded")
		return nil, func() {}, nil
	}
	client, err := llm.NewGeminiCompleter(ctx, llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   int32(cfg.LLM.MaxTokens),
	}, log)
	if err != nil {
		return nil, func() {}, err
	}
	retrying := llm.WithRetry(client, llm.RetryConfig{
		MaxAttempts:    cfg.LLM.MaxAttempts,
		InitialBackoff: cfg.LLM.InitialBackoff,
		MaxBackoff:     cfg.LLM.MaxBackoff,
		CallTimeout:    cfg.LLM.CallTimeout,
	}, log)
	return retrying, func() { _ = client.Close() }, nil
}

// printResult writes data to stdout, as indented JSON with --json or via the
// value's own formatting otherwise.
func printResult(cmd *cobra.Command, opts *RootOptions, data interface{}) error {
	if opts.JSONOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	if s, ok := data.(fmt.Stringer); ok {
		fmt.Fprintln(cmd.OutOrStdout(), s.String())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", data)
	return nil
}
