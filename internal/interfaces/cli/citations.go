package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cr625/proethica-sub007/internal/application/citation"
	"github.com/cr625/proethica-sub007/internal/domain/provision"
)

// newCitationsCmd groups the citation pipeline commands.
func newCitationsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citations",
		Short: "Find and validate code-provision citations in case text",
	}
	cmd.AddCommand(newCitationsFindCmd(opts), newCitationsExtractCmd(opts))
	return cmd
}

// loadSections reads case sections either from a JSON file mapping section
// kind to text, or from a plain-text file treated as one "discussion"
// section.
func loadSections(sectionsFile, textFile string) (map[string]string, error) {
	switch {
	case sectionsFile != "":
		raw, err := os.ReadFile(sectionsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read sections file: %w", err)
		}
		var sections map[string]string
		if err := json.Unmarshal(raw, &sections); err != nil {
			return nil, fmt.Errorf("sections file must be a JSON object of kind to text: %w", err)
		}
		return sections, nil
	case textFile != "":
		raw, err := os.ReadFile(textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		return map[string]string{"discussion": string(raw)}, nil
	default:
		return nil, fmt.Errorf("one of --sections or --text-file is required")
	}
}

func newCitationsFindCmd(opts *RootOptions) *cobra.Command {
	var (
		provisionID  string
		sectionsFile string
		textFile     string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run the pattern stage and print the raw candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := loadSections(sectionsFile, textFile)
			if err != nil {
				return err
			}
			log, err := buildLogger(opts)
			if err != nil {
				return err
			}

			matcher := citation.NewPatternMatcher(log)
			candidates := matcher.FindAllMentions(sections, provisionID, "")
			if !opts.JSONOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "%d candidate(s) for %s\n", len(candidates), provisionID)
				for _, c := range candidates {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%s %.2f] %s @%d: %q\n",
						c.MatchType, c.Confidence, c.Section, c.Position, c.MatchedText)
				}
				return nil
			}
			return printResult(cmd, opts, candidates)
		},
	}

	f := cmd.Flags()
	f.StringVar(&provisionID, "provision", "", "provision identifier, e.g. II.1.e [REQUIRED]")
	f.StringVar(&sectionsFile, "sections", "", "JSON file mapping section kind to text")
	f.StringVar(&textFile, "text-file", "", "plain-text file scanned as a single discussion section")
	_ = cmd.MarkFlagRequired("provision")

	return cmd
}

func newCitationsExtractCmd(opts *RootOptions) *cobra.Command {
	var (
		provisionID   string
		provisionText string
		sectionsFile  string
		textFile      string
		threshold     float64
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run both stages: pattern scan, semantic validation, confidence filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := loadSections(sectionsFile, textFile)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := buildLogger(opts)
			if err != nil {
				return err
			}

			completer, closeLLM, err := buildCompleter(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeLLM()

			matcher := citation.NewPatternMatcher(log)
			validator := citation.NewValidator(completer, log,
				citation.WithBatchSize(cfg.Citation.BatchSize))

			prov := provision.Provision{ID: provisionID, Text: provisionText}
			candidates := matcher.FindAllMentions(sections, prov.ID, prov.Text)
			results := citation.FilterValidated(
				validator.ValidateBatch(cmd.Context(), candidates, prov),
				threshold,
			)

			if !opts.JSONOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "%d candidate(s), %d validated for %s\n",
					len(candidates), len(results), provisionID)
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%s %.2f] %s: %s\n",
						r.MatchQuality, r.Confidence, r.Candidate.Section, r.Reasoning)
				}
				return nil
			}
			return printResult(cmd, opts, results)
		},
	}

	f := cmd.Flags()
	f.StringVar(&provisionID, "provision", "", "provision identifier, e.g. II.1.e [REQUIRED]")
	f.StringVar(&provisionText, "provision-text", "", "provision text shown to the validator")
	f.StringVar(&sectionsFile, "sections", "", "JSON file mapping section kind to text")
	f.StringVar(&textFile, "text-file", "", "plain-text file scanned as a single discussion section")
	f.Float64Var(&threshold, "threshold", 0, "confidence filter threshold (default 0.5)")
	_ = cmd.MarkFlagRequired("provision")

	return cmd
}
