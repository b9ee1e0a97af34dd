// Package keywords extracts candidate skill keywords from job descriptions and
// checks which of them a resume already mentions.
package keywords

import (
	"regexp"
	"strings"
)

// MaxCandidates caps the number of keywords extracted from one job description
const MaxCandidates = 200

// skillPhrases is the curated dictionary searched first, in priority order
var skillPhrases = []string{
	// Languages
	"typescript", "javascript", "python", "java", "c++", "c#", "c", "go", "golang", "rust", "sql",

	// Frontend
	"react", "next.js", "nextjs", "vue", "angular", "html", "css", "tailwind",

	// Backend / APIs
	"node.js", "nodejs", "node", "express", "fastify", "rest", "rest api", "restful", "graphql",

	// Databases
	"mysql", "postgres", "postgresql", "mongodb", "redis",

	// Cloud / DevOps
	"aws", "gcp", "google cloud", "azure", "docker", "kubernetes", "ci/cd", "github actions",

	// Testing
	"jest", "junit", "pytest",
}

// extractionStopwords are generic job-ad words dropped by the token fallback
var extractionStopwords = toSet(
	"the", "and", "or", "to", "of", "in", "for", "a", "an", "with", "on", "at", "by", "from",
	"is", "are", "as", "be", "will", "you", "we", "our", "your", "this", "that", "they", "their",
	"software", "engineer", "engineering", "intern", "internship", "developer", "development",
	"come", "join", "growing", "company", "leading", "marketplace", "both", "marketing",
	"role", "team", "job", "work", "working", "ability", "skills", "skill", "experience",
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9+.#/\n \-]`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	edgePunctuation = regexp.MustCompile(`^[^a-z0-9]+|[^a-z0-9]+$`)

	nodePattern = regexp.MustCompile(`\bnode(\.?js)?\b`)
	ciCDPattern = regexp.MustCompile(`(?i)(ci` + spaceClass + `*/` + spaceClass + `*cd|cicd|continuous integration|continuous delivery)`)
)

// skillMatchers holds one compiled pattern per dictionary entry
var skillMatchers = compileSkillMatchers(skillPhrases)

type skillMatcher struct {
	skill   string
	pattern *regexp.Regexp
}

func compileSkillMatchers(phrases []string) []skillMatcher {
	matchers := make([]skillMatcher, 0, len(phrases))
	for _, phrase := range phrases {
		skill := strings.ToLower(strings.TrimSpace(phrase))
		var pattern *regexp.Regexp
		switch skill {
		case "node", "nodejs", "node.js":
			pattern = nodePattern
		case "ci/cd":
			pattern = ciCDPattern
		default:
			pattern = boundedPhrase(skill)
		}
		matchers = append(matchers, skillMatcher{skill: skill, pattern: pattern})
	}
	return matchers
}

// spaceClass is whitespace including Unicode space separators; RE2's \s is ASCII only.
const spaceClass = `[\s\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

// boundedPhrase matches phrase case-insensitively between non-word characters,
// allowing any run of whitespace between its words.
func boundedPhrase(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(^|\W)` + strings.Join(words, spaceClass+`+`) + `(\W|$)`)
}

// normalizeJobText lowercases text and blanks every character that cannot be part of a skill name.
func normalizeJobText(text string) string {
	text = strings.ToLower(text)
	text = disallowedChars.ReplaceAllString(text, " ")
	text = horizontalSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractCandidates returns skill keywords found in a job description.
// Dictionary skills win; when none are present it falls back to distinct
// non-stopword tokens of three or more characters. At most MaxCandidates are returned.
func ExtractCandidates(jdText string) []string {
	text := normalizeJobText(jdText)

	seen := make(map[string]bool)
	found := make([]string, 0)

	for _, m := range skillMatchers {
		if m.pattern.MatchString(text) && !seen[m.skill] {
			seen[m.skill] = true
			found = append(found, m.skill)
		}
	}

	if len(found) > 0 {
		if len(found) > MaxCandidates {
			found = found[:MaxCandidates]
		}
		return found
	}

	for _, token := range strings.Fields(text) {
		token = edgePunctuation.ReplaceAllString(token, "")
		if len(token) < 3 || extractionStopwords[token] || seen[token] {
			continue
		}
		seen[token] = true
		found = append(found, token)
		if len(found) >= MaxCandidates {
			break
		}
	}

	return found
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
