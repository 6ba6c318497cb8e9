package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyloop/studyloop/internal/workspace"
)

const dateLayout = "2006-01-02"

// RecordStore is the slice of the workspace client the updater needs.
type RecordStore interface {
	GetRecord(ctx context.Context, recordID string) (*workspace.Page, error)
	QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, sorts []workspace.Sort) ([]workspace.Record, error)
	RetrieveCollection(ctx context.Context, collectionID string) (*workspace.Collection, error)
	UpdateRecordProperties(ctx context.Context, recordID string, properties map[string]any) (*workspace.Record, error)
}

// GradeFunc grades a user's reflection against the reference answer,
// returning an evaluation label and feedback text.
type GradeFunc func(ctx context.Context, question, reference, answer string) (evaluation, feedback string, err error)

// LogProperties names the review-log collection's properties.
type LogProperties struct {
	Outcome    string `yaml:"outcome"`
	Quiz       string `yaml:"quiz"`
	Reflection string `yaml:"reflection"`
	Evaluation string `yaml:"evaluation"`
	Feedback   string `yaml:"feedback"`
}

// QuizProperties names the quiz collection's properties the updater
// reads and writes.
type QuizProperties struct {
	NextReview  string `yaml:"next_review"`
	ReviewCount string `yaml:"review_count"`
	Question    string `yaml:"question"`
	Answer      string `yaml:"answer"`
}

// Config holds everything an Updater needs beyond its store.
type Config struct {
	QuizCollectionID string
	LogCollectionID  string
	LogProps         LogProperties
	QuizProps        QuizProperties
	EaseFactor       float64
	Grade            GradeFunc // nil disables grading
	Now              func() time.Time
}

// Updater applies review outcomes back to quiz records.
type Updater struct {
	store RecordStore
	cfg   Config
}

// NewUpdater creates an Updater. Zero config fields fall back to
// defaults.
func NewUpdater(store RecordStore, cfg Config) *Updater {
	if cfg.EaseFactor <= 0 {
		cfg.EaseFactor = DefaultEaseFactor
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Updater{store: store, cfg: cfg}
}

// UpdateQuizSchedule recomputes and writes the next review date of the
// quiz referenced by one review log. A log with a missing outcome or
// relation is skipped with a warning and no error; store failures abort
// this update only.
func (u *Updater) UpdateQuizSchedule(ctx context.Context, reviewLogID string) error {
	slog.Info("starting schedule update", "review_log_id", reviewLogID)

	page, err := u.store.GetRecord(ctx, reviewLogID)
	if err != nil {
		return fmt.Errorf("fetching review log %s: %w", reviewLogID, err)
	}
	return u.applyLog(ctx, reviewLogID, page.Record.Properties)
}

// applyLog runs the outcome→quality→interval→write pipeline for one
// review log's properties.
func (u *Updater) applyLog(ctx context.Context, logID string, props map[string]workspace.Value) error {
	outcome := parseString(props, u.cfg.LogProps.Outcome)
	if outcome == "" {
		slog.Warn("review log has no outcome, skipping", "review_log_id", logID)
		return nil
	}
	quality := QualityForOutcome(outcome)
	slog.Info("mapped review outcome", "outcome", outcome, "quality", quality)

	relatedIDs := parseStringSlice(props, u.cfg.LogProps.Quiz)
	if len(relatedIDs) == 0 {
		slog.Warn("review log has no related quiz, skipping", "review_log_id", logID)
		return nil
	}
	quizID := relatedIDs[0]

	// Review count defaults to 1 when the quiz can't be read or the
	// rollup isn't numeric.
	reviewCount := 1
	if quizPage, err := u.store.GetRecord(ctx, quizID); err != nil {
		slog.Warn("could not fetch quiz for state, using defaults", "quiz_id", quizID, "error", err)
	} else if v, ok := quizPage.Record.Properties[u.cfg.QuizProps.ReviewCount]; ok {
		if n, ok := workspace.AsNumber(v.Parse()); ok {
			reviewCount = int(n)
		} else {
			slog.Info("quiz review count not numeric, using default", "quiz_id", quizID, "default", reviewCount)
		}
	}

	result := NextReviewAt(quality, reviewCount, u.cfg.EaseFactor, u.cfg.Now())
	dueStr := result.Due.Format(dateLayout)

	schema, err := u.store.RetrieveCollection(ctx, u.cfg.QuizCollectionID)
	if err != nil {
		return fmt.Errorf("retrieve quiz schema: %w", err)
	}
	propSchema, ok := schema.Properties[u.cfg.QuizProps.NextReview]
	if !ok {
		return fmt.Errorf("schema for %q not found in quiz collection", u.cfg.QuizProps.NextReview)
	}
	payload, ok := workspace.BuildProperty(propSchema, dueStr, true)
	if !ok {
		return fmt.Errorf("formatting date %q for property %q", dueStr, u.cfg.QuizProps.NextReview)
	}

	if _, err := u.store.UpdateRecordProperties(ctx, quizID, map[string]any{
		u.cfg.QuizProps.NextReview: payload,
	}); err != nil {
		return fmt.Errorf("updating quiz %s: %w", quizID, err)
	}

	slog.Info("quiz schedule updated", "quiz_id", quizID, "next_review", dueStr)
	return nil
}

// ProcessReviews finds review logs that carry an outcome but no AI
// evaluation yet, optionally grades each reflection, and reschedules
// the related quiz. A failing log is logged and the loop advances; the
// returned count is the number of logs fully processed.
func (u *Updater) ProcessReviews(ctx context.Context) (int, error) {
	filter := &workspace.Filter{
		And: []workspace.Filter{
			{Property: u.cfg.LogProps.Outcome, Select: &workspace.SelectCondition{IsNotEmpty: true}},
			{Property: u.cfg.LogProps.Evaluation, Select: &workspace.SelectCondition{IsEmpty: true}},
		},
	}
	logs, err := u.store.QueryCollection(ctx, u.cfg.LogCollectionID, filter, nil)
	if err != nil {
		return 0, fmt.Errorf("querying pending review logs: %w", err)
	}
	slog.Info("pending review logs found", "count", len(logs))

	processed := 0
	for _, rec := range logs {
		if err := u.gradeLog(ctx, rec); err != nil {
			slog.Error("grading review log failed", "review_log_id", rec.ID, "error", err)
		}
		if err := u.applyLog(ctx, rec.ID, rec.Properties); err != nil {
			slog.Error("schedule update failed", "review_log_id", rec.ID, "error", err)
			continue
		}
		processed++
	}
	slog.Info("review processing complete", "processed", processed, "total", len(logs))
	return processed, nil
}

// gradeLog asks the grader to evaluate the log's reflection and writes
// the evaluation and feedback back onto the log record.
func (u *Updater) gradeLog(ctx context.Context, rec workspace.Record) error {
	if u.cfg.Grade == nil {
		slog.Debug("no grader configured, skipping evaluation", "review_log_id", rec.ID)
		return nil
	}
	reflection := parseString(rec.Properties, u.cfg.LogProps.Reflection)
	if reflection == "" {
		slog.Info("review log has no reflection, skipping grading", "review_log_id", rec.ID)
		return nil
	}
	relatedIDs := parseStringSlice(rec.Properties, u.cfg.LogProps.Quiz)
	if len(relatedIDs) == 0 {
		return nil
	}

	quizPage, err := u.store.GetRecord(ctx, relatedIDs[0])
	if err != nil {
		return fmt.Errorf("fetching quiz for grading: %w", err)
	}
	question := parseString(quizPage.Record.Properties, u.cfg.QuizProps.Question)
	reference := parseString(quizPage.Record.Properties, u.cfg.QuizProps.Answer)
	if question == "" || reference == "" {
		slog.Info("quiz lacks question or reference answer, skipping grading", "quiz_id", relatedIDs[0])
		return nil
	}

	evaluation, feedback, err := u.cfg.Grade(ctx, question, reference, reflection)
	if err != nil {
		return fmt.Errorf("evaluating answer: %w", err)
	}

	logSchema, err := u.store.RetrieveCollection(ctx, u.cfg.LogCollectionID)
	if err != nil {
		return fmt.Errorf("retrieve review log schema: %w", err)
	}
	props := map[string]any{}
	if s, ok := logSchema.Properties[u.cfg.LogProps.Evaluation]; ok {
		if payload, ok := workspace.BuildProperty(s, evaluation, true); ok {
			props[u.cfg.LogProps.Evaluation] = payload
		}
	}
	if s, ok := logSchema.Properties[u.cfg.LogProps.Feedback]; ok {
		if payload, ok := workspace.BuildProperty(s, feedback, true); ok {
			props[u.cfg.LogProps.Feedback] = payload
		}
	}
	if len(props) == 0 {
		slog.Warn("review log schema has no evaluation properties, nothing to write", "review_log_id", rec.ID)
		return nil
	}

	if _, err := u.store.UpdateRecordProperties(ctx, rec.ID, props); err != nil {
		return fmt.Errorf("writing evaluation: %w", err)
	}
	slog.Info("review log graded", "review_log_id", rec.ID, "evaluation", evaluation)
	return nil
}

func parseString(props map[string]workspace.Value, name string) string {
	v, ok := props[name]
	if !ok {
		return ""
	}
	s, _ := workspace.AsString(v.Parse())
	return s
}

func parseStringSlice(props map[string]workspace.Value, name string) []string {
	v, ok := props[name]
	if !ok {
		return nil
	}
	s, _ := workspace.AsStringSlice(v.Parse())
	return s
}
