package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/confsum/confsum/chunker"
	"github.com/confsum/confsum/cleaner"
	"github.com/confsum/confsum/config"
	"github.com/confsum/confsum/confluence"
	"github.com/confsum/confsum/export"
	"github.com/confsum/confsum/llm"
	"github.com/confsum/confsum/persona"
	"github.com/confsum/confsum/summarize"
)

func newSummarizeCmd() *cobra.Command {
	var (
		personaName     string
		userContext     string
		includeChildren bool
		noExport        bool
		exportDir       string
		aggregation     string
	)

	cmd := &cobra.Command{
		Use:   "summarize [space_key] [page_id]",
		Short: "Summarize a Confluence page, its children, or a whole space",
		Long: `Summarize fetches one page (or every page of a space when no page_id is
given), generates a persona-styled summary, and exports it as markdown.

The space key falls back to CONFLUENCE_SPACE_KEY when omitted.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			spaceKey := cfg.Confluence.SpaceKey
			if len(args) > 0 {
				spaceKey = args[0]
			}
			if spaceKey == "" {
				return fmt.Errorf("no space key given and CONFLUENCE_SPACE_KEY is not set")
			}

			var pageID string
			if len(args) > 1 {
				pageID = args[1]
			}

			if exportDir != "" {
				cfg.Export.Dir = exportDir
			}
			if aggregation != "" {
				cfg.Aggregation = config.AggregationPolicy(aggregation)
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			pipeline, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			report, err := pipeline.Run(cmd.Context(), summarize.Params{
				SpaceKey:        spaceKey,
				PageID:          pageID,
				IncludeChildren: includeChildren,
				Persona:         personaName,
				Context:         userContext,
				Export:          !noExport,
			})
			if err != nil {
				return err
			}

			return printReport(cmd, report, noExport)
		},
	}

	cmd.Flags().StringVar(&personaName, "persona", persona.DefaultPersona, "Summarization persona")
	cmd.Flags().StringVar(&userContext, "context", "", "Extra context directive for the summary")
	cmd.Flags().BoolVar(&includeChildren, "include-children", false, "Also summarize direct child pages")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Print summaries instead of exporting files")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "Export directory (default from config)")
	cmd.Flags().StringVar(&aggregation, "aggregation", "", "Chunk aggregation policy: concat or resummarize")

	return cmd
}

// buildPipeline assembles the pipeline stages from configuration.
func buildPipeline(cfg *config.Config) (*summarize.Pipeline, error) {
	source := confluence.NewClient(
		cfg.Confluence.URL,
		cfg.Confluence.Username,
		cfg.Confluence.APIToken,
		confluence.WithLogger(slog.Default()),
	)

	retryCfg := llm.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
	retryCfg.BackoffBase = cfg.Retry.BackoffBase

	client := llm.NewClient(llm.Endpoint{
		Provider:   "azure",
		URL:        cfg.Azure.Endpoint,
		Model:      cfg.Azure.DeploymentName,
		APIKey:     cfg.Azure.APIKey,
		APIVersion: cfg.Azure.APIVersion,
	},
		llm.WithTimeout(cfg.Azure.Timeout),
		llm.WithRetryConfig(retryCfg),
	)

	personas, err := persona.LoadRegistry(cfg.PersonaFile)
	if err != nil {
		return nil, err
	}

	chk, err := chunker.New(chunker.Config{
		MaxTokens:     cfg.Chunking.MaxTokens,
		OverlapTokens: cfg.Chunking.OverlapTokens,
	})
	if err != nil {
		return nil, err
	}

	opts := []summarize.PipelineOption{
		summarize.WithTemperature(cfg.Azure.Temperature),
	}
	if cfg.Cache.Dir != "" {
		opts = append(opts, summarize.WithCache(
			summarize.NewCache(cfg.Cache.Dir, cfg.Cache.TTL, slog.Default())))
	}

	return summarize.NewPipeline(
		source,
		client,
		cleaner.NewDefault(),
		chk,
		personas,
		export.NewWriter(cfg.Export.Dir),
		cfg.Aggregation,
		opts...,
	), nil
}

// printReport writes per-page outcomes to stdout. Any failed page makes the
// command exit non-zero.
func printReport(cmd *cobra.Command, report *summarize.BatchReport, printSummaries bool) error {
	out := cmd.OutOrStdout()

	for _, item := range report.Items {
		if item.Err != nil {
			fmt.Fprintf(out, "FAILED  %s (%s): %v\n", item.Title, item.PageID, item.Err)
			continue
		}

		result := item.Result
		switch {
		case printSummaries:
			fmt.Fprintf(out, "=== %s (%s) ===\n\n%s\n\n", item.Title, item.PageID, result.Summary)
		case result.ExportPath != "":
			fmt.Fprintf(out, "exported %s (%s) -> %s\n", item.Title, item.PageID, result.ExportPath)
			if result.Comparison != nil && !result.Comparison.Identical {
				fmt.Fprintf(out, "  changed since previous export: %+d lines, %d sections\n",
					result.Comparison.Stats.LineDifference,
					result.Comparison.Stats.ChangedSections)
			}
		default:
			fmt.Fprintf(out, "summarized %s (%s), export failed; see log\n", item.Title, item.PageID)
		}
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(report.Items))
	}
	return nil
}
