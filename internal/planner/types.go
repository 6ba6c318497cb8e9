package planner

import (
	"log/slog"

	"github.com/studyloop/studyloop/internal/workspace"
)

// QuizItem is the planner's view of one quiz record. Chapters is the
// set of chapter/keyword tags; a quiz may belong to several chapters.
type QuizItem struct {
	ID          string
	Subject     string
	Chapters    []string
	NextReview  string // ISO date, empty when unset
	ReviewCount int
}

// QuizProperties names the quiz collection's properties.
type QuizProperties struct {
	Subject     string `yaml:"subject"`
	Chapters    string `yaml:"chapters"`
	NextReview  string `yaml:"next_review"`
	ReviewCount string `yaml:"review_count"`
}

// PlanProperties names the study-plan collection's properties.
type PlanProperties struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Subjects string `yaml:"subjects"`
	HasQuiz  string `yaml:"has_quiz"`
	State    string `yaml:"state"`
}

// TodoProperties names the todo collection's properties.
type TodoProperties struct {
	Title     string `yaml:"title"`
	Subject   string `yaml:"subject"`
	Due       string `yaml:"due"`
	Plan      string `yaml:"plan"`
	TaskTypes string `yaml:"task_types"`
}

// QuizFromRecord extracts a QuizItem from a raw record. Missing or
// malformed properties degrade to zero values; validity is judged by
// the aggregation filter, not here.
func QuizFromRecord(rec workspace.Record, names QuizProperties) QuizItem {
	item := QuizItem{ID: rec.ID}

	if v, ok := rec.Properties[names.Subject]; ok {
		item.Subject, _ = workspace.AsString(v.Parse())
	}
	if v, ok := rec.Properties[names.Chapters]; ok {
		item.Chapters, _ = workspace.AsStringSlice(v.Parse())
	}
	if v, ok := rec.Properties[names.NextReview]; ok {
		item.NextReview, _ = workspace.AsString(v.Parse())
	}
	if v, ok := rec.Properties[names.ReviewCount]; ok {
		if n, ok := workspace.AsNumber(v.Parse()); ok {
			item.ReviewCount = int(n)
		} else {
			slog.Debug("quiz review count is not numeric", "record_id", rec.ID)
		}
	}
	return item
}
