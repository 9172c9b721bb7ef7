package review

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/joescharf/cra/internal/models"
)

const reportSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["report", "scores", "suggestions"],
  "properties": {
    "report": { "type": "string", "minLength": 1 },
    "scores": {
      "type": "object",
      "required": ["readability_score", "modularity_score", "bug_risk_score", "overall_score"],
      "properties": {
        "readability_score": { "$ref": "#/definitions/score" },
        "modularity_score": { "$ref": "#/definitions/score" },
        "bug_risk_score": { "$ref": "#/definitions/score" },
        "overall_score": { "$ref": "#/definitions/score" }
      }
    },
    "suggestions": {
      "type": "array",
      "minItems": 1,
      "items": { "type": "string" }
    }
  },
  "definitions": {
    "score": { "type": "number", "minimum": 0, "maximum": 10 }
  }
}`

var reportSchemaLoader = gojsonschema.NewStringLoader(reportSchemaJSON)

// maxCandidates bounds how many opening braces are tried before giving up.
const maxCandidates = 32

// Fallback report constants for answers that cannot be parsed.
const (
	fallbackSuggestion = "Review the detailed analysis above for specific improvement suggestions"
	emptyAnswerReport  = "No analysis text was returned by the model."
)

// Interpret turns a model's free-form answer into a ReviewReport. The first
// embedded JSON object that satisfies the report schema wins; otherwise the
// raw text becomes the report body with neutral default scores.
func Interpret(raw string) models.ReviewReport {
	if r, ok := interpret(raw); ok {
		return r
	}
	return fallbackReport(raw)
}

func interpret(raw string) (models.ReviewReport, bool) {
	tried := 0
	for start := strings.IndexByte(raw, '{'); start >= 0 && tried < maxCandidates; {
		tried++
		if end := matchBrace(raw, start); end > start {
			candidate := raw[start : end+1]
			if r, ok := decodeReport(candidate); ok {
				return r, true
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return models.ReviewReport{}, false
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1 when the text ends first. Braces inside JSON strings are
// ignored.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeReport(candidate string) (models.ReviewReport, bool) {
	result, err := gojsonschema.Validate(reportSchemaLoader, gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return models.ReviewReport{}, false
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			slog.Debug("review answer rejected", "issue", desc.String())
		}
		return models.ReviewReport{}, false
	}

	var r models.ReviewReport
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return models.ReviewReport{}, false
	}
	if strings.TrimSpace(r.Report) == "" {
		return models.ReviewReport{}, false
	}
	return r, true
}

func fallbackReport(raw string) models.ReviewReport {
	report := raw
	if strings.TrimSpace(report) == "" {
		report = emptyAnswerReport
	}
	return models.ReviewReport{
		Report: report,
		Scores: models.ReviewScores{
			Readability: 7.0,
			Modularity:  7.0,
			BugRisk:     5.0,
			Overall:     6.5,
		},
		Suggestions: []string{fallbackSuggestion},
	}
}
