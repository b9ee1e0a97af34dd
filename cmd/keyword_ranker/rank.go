package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-ranker/internal/config"
	"github.com/jonathan/keyword-ranker/internal/observability"
	"github.com/jonathan/keyword-ranker/internal/ranking"
	"github.com/jonathan/keyword-ranker/internal/schemas"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate keywords from a request file",
	Long:  "Validates a RankRequest JSON file the same way POST /llm/rank does and writes the RankResponse JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var verbose io.Writer
		if rankVerbose {
			verbose = cmd.ErrOrStderr()
		}
		return runRank(cmd.OutOrStdout(), verbose, rankInput, rankOutput, rankDefaultTopK)
	},
}

var (
	rankInput       string
	rankOutput      string
	rankDefaultTopK int
	rankVerbose     bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankInput, "input", "i", "", "Path to input RankRequest JSON file (required)")
	rankCmd.Flags().StringVarP(&rankOutput, "output", "o", "", "Path to output RankResponse JSON file (default stdout)")
	rankCmd.Flags().BoolVarP(&rankVerbose, "verbose", "v", false, "Print a readable summary to stderr")
	rankCmd.Flags().IntVar(&rankDefaultTopK, "default-top-k", config.DefaultTopK, "topK applied when the request omits it")

	if err := rankCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(stdout, verbose io.Writer, inputPath, outputPath string, defaultTopK int) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file %s: %w", inputPath, err)
	}

	req, err := schemas.ValidateRankRequest(content, defaultTopK)
	if err != nil {
		return fmt.Errorf("invalid rank request: %w", err)
	}

	resp := ranking.Rank(req)
	if verbose != nil {
		observability.NewPrinter(verbose).PrintRanked(resp.RankedImportant)
	}

	return writeJSON(stdout, outputPath, resp)
}
