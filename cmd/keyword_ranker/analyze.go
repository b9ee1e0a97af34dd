package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-ranker/internal/analysis"
	"github.com/jonathan/keyword-ranker/internal/config"
	"github.com/jonathan/keyword-ranker/internal/llm"
	"github.com/jonathan/keyword-ranker/internal/observability"
	"github.com/jonathan/keyword-ranker/internal/schemas"
	"github.com/jonathan/keyword-ranker/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long: `Extracts skills from a job description, reports which ones the resume covers,
and ranks the missing ones. Ranking uses LLM_URL when set, otherwise it runs in-process.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, errs := config.Load("")
		if len(errs) > 0 {
			return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
		}

		opts := analyzeOptions{
			jobPath:    analyzeJob,
			resumePath: analyzeResume,
			outputPath: analyzeOutput,
			noLLM:      analyzeNoLLM,
			rankerURL:  cfg.RankerURL,
			timeout:    cfg.RankerTimeout,
		}
		if analyzeVerbose {
			opts.verbose = cmd.ErrOrStderr()
		}
		if cmd.Flags().Changed("top-k") {
			opts.topK = &analyzeTopK
		}
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

var (
	analyzeJob     string
	analyzeResume  string
	analyzeOutput  string
	analyzeTopK    int
	analyzeNoLLM   bool
	analyzeVerbose bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job description text file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to resume text file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Path to output JSON file (default stdout)")
	analyzeCmd.Flags().IntVarP(&analyzeTopK, "top-k", "k", types.DefaultTopK,
		fmt.Sprintf("Number of extracted skills to score (%d-%d)", types.MinAnalyzeTopK, types.MaxAnalyzeTopK))
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a readable summary to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeNoLLM, "no-llm", false, "Skip ranking of missing skills")

	if err := analyzeCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := analyzeCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOptions struct {
	jobPath    string
	resumePath string
	outputPath string
	topK       *int
	noLLM      bool
	rankerURL  string
	timeout    time.Duration
	verbose    io.Writer
}

func runAnalyze(ctx context.Context, stdout io.Writer, opts analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	jd, err := os.ReadFile(opts.jobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description file %s: %w", opts.jobPath, err)
	}
	resume, err := os.ReadFile(opts.resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file %s: %w", opts.resumePath, err)
	}

	useLLM := !opts.noLLM
	req := types.AnalyzeRequest{
		ResumeText: string(resume),
		JDText:     string(jd),
		Options:    &types.AnalyzeOptions{TopK: opts.topK, UseLLM: &useLLM},
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid analyze input: %w", schemas.FromValidator(err))
	}

	ranker, err := llm.NewRanker(llm.ConfigFor(opts.rankerURL, opts.timeout))
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	resp := analysis.NewAnalyzer(ranker, logger).Analyze(ctx, req)
	if opts.verbose != nil {
		observability.NewPrinter(opts.verbose).PrintAnalysis(&resp)
	}

	return writeJSON(stdout, opts.outputPath, resp)
}
