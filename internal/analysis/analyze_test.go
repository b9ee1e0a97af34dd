package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-ranker/internal/types"
)

// stubRanker records calls and returns a canned result
type stubRanker struct {
	calls []types.RankRequest
	resp  *types.RankResponse
	err   error
}

func (s *stubRanker) Rank(_ context.Context, req types.RankRequest) (*types.RankResponse, error) {
	s.calls = append(s.calls, req)
	return s.resp, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

const jobDescription = "Looking for Python, Docker and Kubernetes experience. AWS is a plus."

func TestAnalyze_RanksMissingKeywordsLocally(t *testing.T) {
	a := NewAnalyzer(nil, quietLogger())

	resp := a.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: "I ship Python services on AWS.",
		JDText:     jobDescription,
	})

	assert.Equal(t, 50, resp.MatchPercent)
	assert.Equal(t, []string{"python", "aws"}, resp.MatchedKeywords)
	assert.Equal(t, []string{"docker", "kubernetes"}, resp.MissingKeywords)
	assert.Equal(t, types.LLMStatusOK, resp.LLMStatus)

	require.Len(t, resp.RankedImportant, 2)
	assert.Equal(t, "docker", resp.RankedImportant[0].Keyword)
	assert.Equal(t, 1.0, resp.RankedImportant[0].Importance)
	assert.Equal(t, "kubernetes", resp.RankedImportant[1].Keyword)
}

func TestAnalyze_SendsOnlyMissingKeywords(t *testing.T) {
	stub := &stubRanker{resp: &types.RankResponse{RankedImportant: []types.RankedItem{{Keyword: "docker"}}}}
	a := NewAnalyzer(stub, quietLogger())

	resp := a.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: "Python and Kubernetes and AWS",
		JDText:     jobDescription,
		Options:    &types.AnalyzeOptions{TopK: intPtr(10)},
	})

	require.Len(t, stub.calls, 1)
	assert.Equal(t, []string{"docker"}, stub.calls[0].Candidates)
	assert.Equal(t, 10, stub.calls[0].TopK)
	assert.Equal(t, jobDescription, stub.calls[0].JDText)
	assert.Equal(t, types.LLMStatusOK, resp.LLMStatus)
	assert.Equal(t, []types.RankedItem{{Keyword: "docker"}}, resp.RankedImportant)
}

func TestAnalyze_TruncatesCandidatesToTopK(t *testing.T) {
	stub := &stubRanker{resp: &types.RankResponse{RankedImportant: []types.RankedItem{}}}
	a := NewAnalyzer(stub, quietLogger())

	jd := "typescript javascript python java rust sql react vue angular html css"
	resp := a.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: "nothing relevant",
		JDText:     jd,
		Options:    &types.AnalyzeOptions{TopK: intPtr(5)},
	})

	assert.Equal(t, []string{"typescript", "javascript", "python", "java", "rust"}, resp.MissingKeywords)
	assert.Equal(t, 0, resp.MatchPercent)
}

func TestAnalyze_SkipsWhenDisabled(t *testing.T) {
	stub := &stubRanker{}
	a := NewAnalyzer(stub, quietLogger())

	resp := a.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: "nothing",
		JDText:     jobDescription,
		Options:    &types.AnalyzeOptions{UseLLM: boolPtr(false)},
	})

	assert.Empty(t, stub.calls)
	assert.Equal(t, types.LLMStatusSkipped, resp.LLMStatus)
	assert.NotNil(t, resp.RankedImportant)
	assert.Empty(t, resp.RankedImportant)
}

func TestAnalyze_SkipsWhenNothingMissing(t *testing.T) {
	stub := &stubRanker{}
	a := NewAnalyzer(stub, quietLogger())

	resp := a.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: "python docker kubernetes aws",
		JDText:     jobDescription,
	})

	assert.Empty(t, stub.calls)
	assert.Equal(t, 100, resp.MatchPercent)
	assert.Equal(t, types.LLMStatusSkipped, resp.LLMStatus)
}

func TestAnalyze_RankerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.LLMStatus
	}{
		{"timeout", context.DeadlineExceeded, types.LLMStatusTimeout},
		{"wrapped timeout", errors.Join(errors.New("rank request failed"), context.DeadlineExceeded), types.LLMStatusTimeout},
		{"other error", errors.New("connection refused"), types.LLMStatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&stubRanker{err: tt.err}, quietLogger())

			resp := a.Analyze(context.Background(), types.AnalyzeRequest{
				ResumeText: "python",
				JDText:     jobDescription,
			})

			assert.Equal(t, tt.want, resp.LLMStatus)
			assert.NotNil(t, resp.RankedImportant)
			assert.Empty(t, resp.RankedImportant)
			assert.Equal(t, 25, resp.MatchPercent)
		})
	}
}
