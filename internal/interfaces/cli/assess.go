package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cr625/proethica-sub007/internal/application/relevance"
	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/domain/guideline"
	"github.com/cr625/proethica-sub007/internal/intelligence/embedding"
)

// newAssessCmd groups the relevance-scoring commands.
func newAssessCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score sections against guideline statements",
	}
	cmd.AddCommand(newAssessPairCmd(opts))
	return cmd
}

func newAssessPairCmd(opts *RootOptions) *cobra.Command {
	var (
		sectionKind   string
		sectionText   string
		sectionFile   string
		statementURI  string
		stmtLabel     string
		stmtDesc      string
		statementKind string
		threshold     float64
	)

	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Score one section/statement pair",
		Long: "Runs the full scoring pipeline on a single pair: vector similarity,\n" +
			"term overlap, structural prior, and (when an LLM key is configured)\n" +
			"the semantic judge.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sectionText == "" && sectionFile == "" {
				return fmt.Errorf("one of --text or --text-file is required")
			}
			if sectionText == "" {
				raw, err := os.ReadFile(sectionFile)
				if err != nil {
					return fmt.Errorf("failed to read section text: %w", err)
				}
				sectionText = string(raw)
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

			var embedder embedding.TextEmbedder
			if cfg.Embedding.Endpoint != "" {
				embedder = embedding.NewHTTPEmbedder(embedding.Config{
					Endpoint:  cfg.Embedding.Endpoint,
					Dimension: cfg.Embedding.Dimension,
					Timeout:   cfg.Embedding.Timeout,
				}, log)
			}

			service := relevance.NewService(
				nil, nil, nil,
				embedder,
				relevance.NewSemanticJudge(completer, log),
				nil, nil,
				relevance.DefaultConfig(),
				log,
			)

			section := &document.Section{
				Kind: document.SectionKind(sectionKind),
				Text: sectionText,
			}
			statement := &guideline.Statement{
				URI:         statementURI,
				Label:       stmtLabel,
				Description: stmtDesc,
				Kind:        guideline.StatementKind(statementKind),
			}

			if threshold > 0 {
				a := service.AssessAndEscalate(cmd.Context(), section, statement, threshold)
				if a == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "below escalation threshold; judge not consulted")
					return nil
				}
				return printResult(cmd, opts, a)
			}
			return printResult(cmd, opts, service.Assess(cmd.Context(), section, statement))
		},
	}

	f := cmd.Flags()
	f.StringVar(&sectionKind, "kind", "discussion", "section kind (facts, discussion, conclusion, question, references, dissent)")
	f.StringVar(&sectionText, "text", "", "section text")
	f.StringVar(&sectionFile, "text-file", "", "file containing the section text")
	f.StringVar(&statementURI, "statement-uri", "urn:cli:statement", "guideline statement URI")
	f.StringVar(&stmtLabel, "statement-label", "", "guideline statement label [REQUIRED]")
	f.StringVar(&stmtDesc, "statement-description", "", "guideline statement description")
	f.StringVar(&statementKind, "statement-kind", "guideline", "statement kind (guideline, action, condition, principle, obligation, capability)")
	f.Float64Var(&threshold, "threshold", 0, "escalation threshold; > 0 skips the judge for weak pairs")
	_ = cmd.MarkFlagRequired("statement-label")

	return cmd
}
