// Package main provides the entry point for the keyword ranker HTTP API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "keyword_ranker",
	Short:        "Keyword Ranker HTTP API Server",
	Long:         "Keyword Ranker annotates candidate job keywords with importance and improvement advice, and scores resumes against job descriptions.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
