package ranking

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-ranker/internal/types"
)

func keywordsOf(resp types.RankResponse) []string {
	out := make([]string, 0, len(resp.RankedImportant))
	for _, item := range resp.RankedImportant {
		out = append(out, item.Keyword)
	}
	return out
}

func importancesOf(resp types.RankResponse) []float64 {
	out := make([]float64, 0, len(resp.RankedImportant))
	for _, item := range resp.RankedImportant {
		out = append(out, item.Importance)
	}
	return out
}

func TestRank_PreservesOrderAndScoresByPosition(t *testing.T) {
	resp := Rank(types.RankRequest{
		Candidates: []string{"python", "docker", "kubernetes"},
		TopK:       20,
	})

	require.Len(t, resp.RankedImportant, 3)
	assert.Equal(t, []string{"python", "docker", "kubernetes"}, keywordsOf(resp))
	assert.Equal(t, []float64{1.0, 0.95, 0.9}, importancesOf(resp))
}

func TestRank_TruncatesToTopK(t *testing.T) {
	resp := Rank(types.RankRequest{
		Candidates: []string{"a", "b", "c", "d", "e"},
		TopK:       2,
	})

	require.Len(t, resp.RankedImportant, 2)
	assert.Equal(t, "a", resp.RankedImportant[0].Keyword)
	assert.Equal(t, 1.0, resp.RankedImportant[0].Importance)
	assert.Equal(t, "b", resp.RankedImportant[1].Keyword)
	assert.Equal(t, 0.95, resp.RankedImportant[1].Importance)
}

func TestRank_EmptyCandidates(t *testing.T) {
	resp := Rank(types.RankRequest{Candidates: []string{}, TopK: 20})
	assert.NotNil(t, resp.RankedImportant)
	assert.Empty(t, resp.RankedImportant)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rankedImportant": []}`, string(data))
}

func TestRank_NilCandidates(t *testing.T) {
	resp := Rank(types.RankRequest{TopK: 20})
	assert.NotNil(t, resp.RankedImportant)
	assert.Empty(t, resp.RankedImportant)
}

func TestRank_ZeroAndNegativeTopK(t *testing.T) {
	candidates := []string{"a", "b", "c"}

	for _, topK := range []int{0, -1, -100} {
		t.Run(fmt.Sprintf("topK=%d", topK), func(t *testing.T) {
			resp := Rank(types.RankRequest{Candidates: candidates, TopK: topK})
			assert.NotNil(t, resp.RankedImportant)
			assert.Empty(t, resp.RankedImportant)
		})
	}
}

func TestRank_OutputLength(t *testing.T) {
	tests := []struct {
		candidates int
		topK       int
		want       int
	}{
		{candidates: 0, topK: 20, want: 0},
		{candidates: 5, topK: 20, want: 5},
		{candidates: 20, topK: 20, want: 20},
		{candidates: 30, topK: 20, want: 20},
		{candidates: 30, topK: 25, want: 25},
		{candidates: 3, topK: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_candidates_topK_%d", tt.candidates, tt.topK), func(t *testing.T) {
			candidates := make([]string, tt.candidates)
			for i := range candidates {
				candidates[i] = fmt.Sprintf("kw%d", i)
			}

			resp := Rank(types.RankRequest{Candidates: candidates, TopK: tt.topK})
			assert.Len(t, resp.RankedImportant, tt.want)
			assert.Equal(t, candidates[:tt.want], keywordsOf(resp))
		})
	}
}

func TestRank_ImportanceIndependentOfKeyword(t *testing.T) {
	first := Rank(types.RankRequest{Candidates: []string{"go", "rust"}, TopK: 20})
	second := Rank(types.RankRequest{Candidates: []string{"zzz", "aaa"}, TopK: 20})
	assert.Equal(t, importancesOf(first), importancesOf(second))
}

func TestRank_IgnoresTextFields(t *testing.T) {
	base := types.RankRequest{Candidates: []string{"go", "sql"}, TopK: 20}
	withText := base
	withText.JDText = "We need Go and SQL"
	withText.ResumeText = "I know SQL"

	assert.Equal(t, Rank(base), Rank(withText))
}

func TestRank_Idempotent(t *testing.T) {
	req := types.RankRequest{
		JDText:     "jd",
		ResumeText: "cv",
		Candidates: []string{"python", "docker", "kubernetes", "aws"},
		TopK:       3,
	}

	first, err := json.Marshal(Rank(req))
	require.NoError(t, err)
	second, err := json.Marshal(Rank(req))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	candidates := []string{"b", "a", "c"}
	Rank(types.RankRequest{Candidates: candidates, TopK: 2})
	assert.Equal(t, []string{"b", "a", "c"}, candidates)
}

func TestRankItem_Text(t *testing.T) {
	item := RankItem("docker", 4)

	assert.Equal(t, "docker", item.Keyword)
	assert.Equal(t, 0.8, item.Importance)
	assert.Equal(t, "docker is commonly required for modern SWE roles.", item.WhyImportant)
	assert.Equal(t, []string{
		"Add docker to a project",
		"Mention docker explicitly in a resume bullet",
		"Practice with a small demo using docker",
	}, item.HowToImprove)
}

func TestRankItem_SuggestionsContainKeyword(t *testing.T) {
	for _, kw := range []string{"go", "c++", "ci/cd", "node.js", "rest api", ""} {
		item := RankItem(kw, 0)
		require.Len(t, item.HowToImprove, 3)
		for _, tip := range item.HowToImprove {
			assert.Contains(t, tip, kw)
		}
	}
}

func TestImportance(t *testing.T) {
	tests := []struct {
		position int
		want     float64
	}{
		{0, 1.0},
		{1, 0.95},
		{2, 0.9},
		{3, 0.85},
		{10, 0.5},
		{19, 0.05},
		{20, 0.0},
		{21, -0.05},
		{30, -0.5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("i=%d", tt.position), func(t *testing.T) {
			assert.InDelta(t, tt.want, Importance(tt.position), 1e-9)
		})
	}
}

func TestImportance_StrictlyDecreasing(t *testing.T) {
	for i := 1; i < 50; i++ {
		assert.Less(t, Importance(i), Importance(i-1))
	}
}
