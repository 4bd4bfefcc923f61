package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/analysis"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
)

// options are the flags shared by every subcommand
type options struct {
	runID       string
	format      string
	includeText bool
	keywords    []string
	sheet       string
	currency    string
}

// apply lets flags override the environment
func (o *options) apply(cfg *config.Config) error {
	if len(o.keywords) > 0 {
		cfg.Analysis.SalesKeywords = o.keywords
	}
	if o.sheet != "" {
		cfg.Analysis.SalesSheet = o.sheet
	}
	if o.currency != "" {
		if err := config.ValidateCurrency(o.currency); err != nil {
			return err
		}
		cfg.Analysis.ReportCurrency = strings.ToUpper(o.currency)
	}
	return nil
}

type analyzeFunc func(ctx context.Context, svc *analysis.AnalysisService, runID, path string) (*analysis.Report, error)

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "analyzer",
		Short:        "Summarize sales exports and financial statements",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.runID, "run-id", "", "run identifier (random when empty)")
	flags.StringVarP(&opts.format, "format", "f", formatText, "output format: json, yaml or text")
	flags.BoolVar(&opts.includeText, "include-text", false, "include the extracted statement text in json and yaml output")
	flags.StringSliceVar(&opts.keywords, "keywords", nil, "item-name keywords that select sales rows (overrides ANALYZER_SALES_KEYWORDS)")
	flags.StringVar(&opts.sheet, "sheet", "", "sales workbook sheet to read (overrides ANALYZER_SALES_SHEET)")
	flags.StringVar(&opts.currency, "currency", "", "currency used to display totals (overrides REPORT_CURRENCY)")

	root.AddCommand(
		newAnalyzeCmd(opts, "sales <path>", "Summarize a sales export (xlsx or csv)",
			func(ctx context.Context, svc *analysis.AnalysisService, runID, path string) (*analysis.Report, error) {
				return svc.AnalyzeSales(ctx, runID, path), nil
			}),
		newAnalyzeCmd(opts, "statement <path>", "Compute ratios from a financial statement PDF",
			func(ctx context.Context, svc *analysis.AnalysisService, runID, path string) (*analysis.Report, error) {
				return svc.AnalyzeStatement(ctx, runID, path), nil
			}),
		newAnalyzeCmd(opts, "analyze <path>", "Detect the artifact kind and run the matching pipeline",
			func(ctx context.Context, svc *analysis.AnalysisService, runID, path string) (*analysis.Report, error) {
				return svc.Analyze(ctx, runID, path)
			}),
	)

	return root
}

func newAnalyzeCmd(opts *options, use, short string, analyze analyzeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("artifact not found: %w", err)
			}
			if err := checkFormat(opts.format); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			deps, err := InitDependencies(cfg, logger, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to init dependencies: %w", err)
			}
			defer func() {
				if err := deps.Close(context.WithoutCancel(cmd.Context())); err != nil {
					logger.Warn("failed to shut down tracing", "error", err)
				}
			}()

			report, err := analyze(cmd.Context(), deps.AnalysisService, opts.runID, path)
			if err != nil {
				return err
			}

			if err := deps.WriteMetrics(); err != nil {
				logger.Warn("failed to export metrics", "error", err)
			}

			if !opts.includeText {
				report.Text = ""
			}
			return renderReport(cmd.OutOrStdout(), report, opts.format, cfg.Analysis.ReportCurrency)
		},
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}
