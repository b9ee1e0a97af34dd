//nolint:revive // types is a standard Go package name pattern
package types

// LLMStatus reports what happened to the optional ranker call made during analysis.
type LLMStatus string

const (
	// LLMStatusOK means the ranker answered
	LLMStatusOK LLMStatus = "ok"
	// LLMStatusTimeout means the ranker did not answer before the deadline
	LLMStatusTimeout LLMStatus = "timeout"
	// LLMStatusError means the ranker call failed for any other reason
	LLMStatusError LLMStatus = "error"
	// LLMStatusSkipped means the ranker was not called
	LLMStatusSkipped LLMStatus = "skipped"
)

// Analyze option bounds
const (
	MinAnalyzeTopK = 5
	MaxAnalyzeTopK = 50
)

// AnalyzeRequest is the body accepted by POST /analyze.
type AnalyzeRequest struct {
	ResumeText string          `json:"resumeText" validate:"required,min=1"`
	JDText     string          `json:"jdText" validate:"required,min=1"`
	Options    *AnalyzeOptions `json:"options,omitempty"`
}

// AnalyzeOptions tunes an analysis run. Nil fields take their defaults.
type AnalyzeOptions struct {
	TopK   *int  `json:"topK,omitempty" validate:"omitempty,gte=5,lte=50"`
	UseLLM *bool `json:"useLlm,omitempty"`
}

// EffectiveTopK returns the requested topK or DefaultTopK.
func (r *AnalyzeRequest) EffectiveTopK() int {
	if r.Options != nil && r.Options.TopK != nil {
		return *r.Options.TopK
	}
	return DefaultTopK
}

// EffectiveUseLLM reports whether the ranker should be consulted. Defaults to true.
func (r *AnalyzeRequest) EffectiveUseLLM() bool {
	if r.Options != nil && r.Options.UseLLM != nil {
		return *r.Options.UseLLM
	}
	return true
}

// KeywordScore is the deterministic resume-vs-keywords match result
type KeywordScore struct {
	MatchPercent    int      `json:"matchPercent"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
}

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	KeywordScore
	RankedImportant []RankedItem `json:"rankedImportant"`
	LLMStatus       LLMStatus    `json:"llmStatus"`
}
