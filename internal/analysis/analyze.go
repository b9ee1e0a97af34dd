// Package analysis scores a resume against the skills a job description asks for
// and, optionally, asks a ranker for advice on the missing ones.
package analysis

import (
	"context"
	"log/slog"

	"github.com/jonathan/keyword-ranker/internal/keywords"
	"github.com/jonathan/keyword-ranker/internal/llm"
	"github.com/jonathan/keyword-ranker/internal/types"
)

// Analyzer runs the analyze flow
type Analyzer struct {
	ranker llm.Ranker
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil ranker falls back to in-process ranking.
func NewAnalyzer(ranker llm.Ranker, logger *slog.Logger) *Analyzer {
	if ranker == nil {
		ranker = llm.LocalRanker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{ranker: ranker, logger: logger}
}

// Analyze extracts candidate skills from the job description, keeps the first topK,
// and scores the resume against them. Missing skills are sent to the ranker when enabled;
// a ranker failure is reported in LLMStatus and never fails the analysis.
func (a *Analyzer) Analyze(ctx context.Context, req types.AnalyzeRequest) types.AnalyzeResponse {
	topK := req.EffectiveTopK()

	candidates := keywords.ExtractCandidates(req.JDText)
	important := candidates[:min(len(candidates), max(topK, 0))]
	score := keywords.Score(req.ResumeText, important)

	resp := types.AnalyzeResponse{
		KeywordScore:    score,
		RankedImportant: []types.RankedItem{},
		LLMStatus:       types.LLMStatusSkipped,
	}

	if !req.EffectiveUseLLM() || len(score.MissingKeywords) == 0 {
		return resp
	}

	ranked, err := a.ranker.Rank(ctx, types.RankRequest{
		JDText:     req.JDText,
		ResumeText: req.ResumeText,
		Candidates: score.MissingKeywords,
		TopK:       topK,
	})
	if err != nil {
		resp.LLMStatus = types.LLMStatusError
		if llm.IsTimeout(err) {
			resp.LLMStatus = types.LLMStatusTimeout
		}
		a.logger.WarnContext(ctx, "ranker call failed",
			slog.String("llm_status", string(resp.LLMStatus)),
			slog.Int("missing", len(score.MissingKeywords)),
			slog.Any("error", err))
		return resp
	}

	if ranked != nil && ranked.RankedImportant != nil {
		resp.RankedImportant = ranked.RankedImportant
	}
	resp.LLMStatus = types.LLMStatusOK
	return resp
}
