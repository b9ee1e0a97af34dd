package keywords

import (
	"math"
	"regexp"
	"strings"

	"github.com/jonathan/keyword-ranker/internal/types"
)

// MaxReportedKeywords caps the matched and missing lists in a score
const MaxReportedKeywords = 50

// roleStopwords never count as a match; every posting mentions them
var roleStopwords = toSet(
	"software", "engineer", "engineering", "intern", "internship", "developer", "development",
)

var restPattern = regexp.MustCompile(`\brest\b|restful|rest` + spaceClass + `+api`)

func normalizeResume(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Matches reports whether a normalized resume mentions keyword.
func Matches(resume, keyword string) bool {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" || roleStopwords[k] {
		return false
	}

	switch k {
	case "node", "nodejs", "node.js":
		return nodePattern.MatchString(resume)
	case "rest", "rest api", "restful":
		return restPattern.MatchString(resume)
	}

	return boundedPhrase(k).MatchString(resume)
}

// Score splits keywords into those the resume mentions and those it is missing.
// MatchPercent is the rounded share of matched keywords; an empty keyword list scores 0.
func Score(resumeText string, keywords []string) types.KeywordScore {
	resume := normalizeResume(resumeText)

	matched := make([]string, 0)
	missing := make([]string, 0)
	for _, kw := range keywords {
		if Matches(resume, kw) {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	denom := max(len(keywords), 1)
	percent := int(math.Round(float64(len(matched)) / float64(denom) * 100))

	return types.KeywordScore{
		MatchPercent:    percent,
		MatchedKeywords: capped(matched, MaxReportedKeywords),
		MissingKeywords: capped(missing, MaxReportedKeywords),
	}
}

func capped(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
