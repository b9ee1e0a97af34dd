// Package types provides type definitions for structured data used throughout the keyword ranker.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DefaultTopK is the number of candidates annotated when a request omits topK.
const DefaultTopK = 20

// RankRequest is the body accepted by POST /llm/rank.
// JDText and ResumeText are carried through but not read by the placeholder ranker.
type RankRequest struct {
	JDText     string   `json:"jdText"`
	ResumeText string   `json:"resumeText"`
	Candidates []string `json:"candidates"`
	TopK       int      `json:"topK" validate:"gte=0"`
}

// RankedItem is a single annotated candidate keyword
type RankedItem struct {
	Keyword      string   `json:"keyword"`
	Importance   float64  `json:"importance"`
	WhyImportant string   `json:"whyImportant"`
	HowToImprove []string `json:"howToImprove"`
}

// RankResponse wraps the ranked candidates in input order
type RankResponse struct {
	RankedImportant []RankedItem `json:"rankedImportant"`
}
