package models

import (
	"strings"
	"time"
)

// ReviewRequest is a single file submitted for review.
type ReviewRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ReviewScores holds the four numeric ratings of a review, conventionally 0-10.
type ReviewScores struct {
	Readability float64 `json:"readability_score"`
	Modularity  float64 `json:"modularity_score"`
	BugRisk     float64 `json:"bug_risk_score"`
	Overall     float64 `json:"overall_score"`
}

// ReviewReport is the structured result of analyzing one file.
type ReviewReport struct {
	Report      string       `json:"report"`
	Scores      ReviewScores `json:"scores"`
	Suggestions []string     `json:"suggestions"`
}

// Review is a persisted ReviewReport together with the reviewed source.
type Review struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FileContent  string    `json:"-"`
	ReviewReport string    `json:"review_report"`
	Readability  float64   `json:"readability_score"`
	Modularity   float64   `json:"modularity_score"`
	BugRisk      float64   `json:"bug_risk_score"`
	Overall      float64   `json:"overall_score"`
	Suggestions  string    `json:"suggestions"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReview flattens a report into a record ready to be saved.
func NewReview(filename, content string, r ReviewReport) *Review {
	return &Review{
		Filename:     filename,
		FileContent:  content,
		ReviewReport: r.Report,
		Readability:  r.Scores.Readability,
		Modularity:   r.Scores.Modularity,
		BugRisk:      r.Scores.BugRisk,
		Overall:      r.Scores.Overall,
		Suggestions:  strings.Join(r.Suggestions, "\n"),
	}
}

// SuggestionList splits the stored suggestions back into their entries.
func (r *Review) SuggestionList() []string {
	if r.Suggestions == "" {
		return nil
	}
	return strings.Split(r.Suggestions, "\n")
}
