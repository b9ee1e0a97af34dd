// Package schemas holds the JSON Schema documents describing the service's wire formats.
package schemas

import "embed"

// Schema file names
const (
	RankRequest    = "rank_request.schema.json"
	RankResponse   = "rank_response.schema.json"
	AnalyzeRequest = "analyze_request.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
