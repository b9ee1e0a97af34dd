// Package ranking annotates candidate keywords with a positional importance score
// and canned improvement advice.
package ranking

import (
	"fmt"
	"math"

	"github.com/jonathan/keyword-ranker/internal/types"
)

const (
	// topImportance is the score of the first candidate
	topImportance = 1.0
	// importanceStep is subtracted for every position after the first
	importanceStep = 0.05
)

// Rank keeps the first req.TopK candidates, in input order, and annotates each one.
// Negative TopK is treated as zero. The result never has a nil slice.
func Rank(req types.RankRequest) types.RankResponse {
	limit := min(len(req.Candidates), max(req.TopK, 0))

	items := make([]types.RankedItem, 0, limit)
	for i, keyword := range req.Candidates[:limit] {
		items = append(items, RankItem(keyword, i))
	}

	return types.RankResponse{RankedImportant: items}
}

// RankItem builds the annotation for the keyword at zero-based position i.
func RankItem(keyword string, i int) types.RankedItem {
	return types.RankedItem{
		Keyword:      keyword,
		Importance:   Importance(i),
		WhyImportant: fmt.Sprintf("%s is commonly required for modern SWE roles.", keyword),
		HowToImprove: []string{
			fmt.Sprintf("Add %s to a project", keyword),
			fmt.Sprintf("Mention %s explicitly in a resume bullet", keyword),
			fmt.Sprintf("Practice with a small demo using %s", keyword),
		},
	}
}

// Importance returns 1.0 - 0.05*i rounded to two decimals.
// It is not clamped and goes negative from position 21 on.
func Importance(i int) float64 {
	return roundTo(topImportance-importanceStep*float64(i), 2)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
