// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/keyword-ranker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxListWidth caps joined keyword lists inside a box
	maxListWidth = 48
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintAnalysis outputs a human-readable summary of an analyze result.
func (p *Printer) PrintAnalysis(resp *types.AnalyzeResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	total := len(resp.MatchedKeywords) + len(resp.MissingKeywords)
	sb.WriteString(fmt.Sprintf("Match:    %d%% (%d of %d skills)\n", resp.MatchPercent, len(resp.MatchedKeywords), total))
	sb.WriteString(fmt.Sprintf("Ranker:   %s\n", resp.LLMStatus))

	if len(resp.MatchedKeywords) > 0 {
		sb.WriteString("\nMatched:\n")
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(strings.Join(resp.MatchedKeywords, ", "), maxListWidth)))
	}
	if len(resp.MissingKeywords) > 0 {
		sb.WriteString("\nMissing:\n")
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(strings.Join(resp.MissingKeywords, ", "), maxListWidth)))
	}

	p.printBox("RESUME KEYWORD MATCH", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintRanked(resp.RankedImportant)
}

// PrintRanked outputs the top ranked keywords with their importance and first suggestion.
func (p *Printer) PrintRanked(items []types.RankedItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total keywords ranked: %d\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%.2f)\n", i+1, item.Keyword, item.Importance))
		if len(item.HowToImprove) > 0 {
			sb.WriteString(fmt.Sprintf("    • %s\n", item.HowToImprove[0]))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more keywords", len(items)-maxItemsToShow))
	}

	p.printBox("TOP RANKED KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}
