// Package planner selects bounded daily subsets of due quizzes and
// materializes study-plan and todo records for them.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/studyloop/studyloop/internal/workspace"
)

const (
	defaultLookaheadDays = 7
	dateLayout           = "2006-01-02"
)

// RecordStore is the slice of the workspace client the planner needs.
type RecordStore interface {
	QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, sorts []workspace.Sort) ([]workspace.Record, error)
	RetrieveCollection(ctx context.Context, collectionID string) (*workspace.Collection, error)
	CreateRecord(ctx context.Context, collectionID string, properties map[string]any) (*workspace.Record, error)
}

// Collections holds the resolved collection ids the planner writes to.
type Collections struct {
	Quiz string
	Plan string
	Todo string
}

// Config holds everything a Planner needs beyond its store.
type Config struct {
	Collections     Collections
	CurrentSubjects []string
	Selection       SelectionConfig
	LookaheadDays   int
	QuizProps       QuizProperties
	PlanProps       PlanProperties
	TodoProps       TodoProperties
	TaskTypes       []string
	Now             func() time.Time
}

// Planner orchestrates fetching due quizzes, selecting a daily subset,
// and writing the plan and todo records.
type Planner struct {
	store RecordStore
	cfg   Config
}

// New creates a Planner. Zero config fields fall back to defaults.
func New(store RecordStore, cfg Config) *Planner {
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = defaultLookaheadDays
	}
	cfg.Selection = cfg.Selection.withDefaults()
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Planner{store: store, cfg: cfg}
}

func (p *Planner) today() time.Time {
	now := p.cfg.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// fetchDue queries quizzes whose next-review date falls within
// [today, today+days] inclusive.
func (p *Planner) fetchDue(ctx context.Context, days int) ([]QuizItem, error) {
	today := p.today()
	end := today.AddDate(0, 0, days)
	slog.Info("fetching due quizzes", "days_ahead", days)

	filter := workspace.DateRangeFilter(
		p.cfg.QuizProps.NextReview,
		today.Format(dateLayout),
		end.Format(dateLayout),
	)
	records, err := p.store.QueryCollection(ctx, p.cfg.Collections.Quiz, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming quizzes: %w", err)
	}
	slog.Info("found due quizzes", "count", len(records))

	items := make([]QuizItem, 0, len(records))
	for _, rec := range records {
		items = append(items, QuizFromRecord(rec, p.cfg.QuizProps))
	}
	return items, nil
}

// PlanDaily creates today's study plan from quizzes due within the
// lookahead window. A pre-existing plan for today makes this a no-op.
func (p *Planner) PlanDaily(ctx context.Context) error {
	items, err := p.fetchDue(ctx, p.cfg.LookaheadDays)
	if err != nil {
		return err
	}
	pool := FilterCurrent(items, p.cfg.CurrentSubjects)
	if len(pool) == 0 {
		slog.Info("no plannable quizzes found")
		return nil
	}

	sel := SelectDaily(pool, p.cfg.Selection)
	return p.writePlan(ctx, p.today(), sel)
}

// PlanPeriod plans the next `days` calendar days from a single pool
// fetch. Each day's consumed quizzes are removed from the pool before
// the next day runs, so no quiz is ever assigned to more than one day.
// A failed day is logged and the loop advances.
func (p *Planner) PlanPeriod(ctx context.Context, days int) error {
	if days <= 0 {
		days = 1
	}
	items, err := p.fetchDue(ctx, days+p.cfg.LookaheadDays)
	if err != nil {
		return err
	}
	pool := FilterCurrent(items, p.cfg.CurrentSubjects)

	// Earliest-due quizzes get planned first; undated items sort last.
	sort.SliceStable(pool, func(i, j int) bool {
		di, dj := pool[i].NextReview, pool[j].NextReview
		if di == "" {
			return false
		}
		if dj == "" {
			return true
		}
		return di < dj
	})

	today := p.today()
	for day := 0; day < days; day++ {
		if len(pool) == 0 {
			slog.Info("pool exhausted, stopping period planning", "days_planned", day)
			break
		}
		date := today.AddDate(0, 0, day)
		sel := SelectDaily(pool, p.cfg.Selection)
		if sel.Empty() {
			slog.Info("nothing selectable, stopping period planning", "date", date.Format(dateLayout))
			break
		}

		if err := p.writePlan(ctx, date, sel); err != nil {
			slog.Error("failed to write plan for day", "date", date.Format(dateLayout), "error", err)
		}

		remaining := pool[:0]
		for _, item := range pool {
			if _, consumed := sel.ConsumedIDs[item.ID]; !consumed {
				remaining = append(remaining, item)
			}
		}
		pool = remaining
	}
	return nil
}

// planExists checks whether a study plan already exists for the date.
func (p *Planner) planExists(ctx context.Context, date time.Time) (bool, error) {
	filter := workspace.DateEqualsFilter(p.cfg.PlanProps.Date, date.Format(dateLayout))
	records, err := p.store.QueryCollection(ctx, p.cfg.Collections.Plan, filter, nil)
	if err != nil {
		return false, fmt.Errorf("checking existing plan: %w", err)
	}
	return len(records) > 0, nil
}

// writePlan creates one study-plan record for the date plus one todo
// per (subject, chapter) pair, skipping entirely when a plan for the
// date already exists.
func (p *Planner) writePlan(ctx context.Context, date time.Time, sel Selection) error {
	if sel.Empty() {
		slog.Warn("no subjects selected, cannot create study plan")
		return nil
	}

	exists, err := p.planExists(ctx, date)
	if err != nil {
		return err
	}
	dateStr := date.Format(dateLayout)
	if exists {
		slog.Info("study plan already exists for date, skipping", "date", dateStr)
		return nil
	}

	planSchema, err := p.store.RetrieveCollection(ctx, p.cfg.Collections.Plan)
	if err != nil {
		return fmt.Errorf("retrieve study plan schema: %w", err)
	}
	todoSchema, err := p.store.RetrieveCollection(ctx, p.cfg.Collections.Todo)
	if err != nil {
		return fmt.Errorf("retrieve todo schema: %w", err)
	}

	planProps := map[string]any{}
	setProperty(planProps, planSchema, p.cfg.PlanProps.Title, "每日学习计划 - "+dateStr)
	setProperty(planProps, planSchema, p.cfg.PlanProps.Date, dateStr)
	setProperty(planProps, planSchema, p.cfg.PlanProps.Subjects, strings.Join(sel.Subjects, ","))
	setProperty(planProps, planSchema, p.cfg.PlanProps.HasQuiz, "true")
	setProperty(planProps, planSchema, p.cfg.PlanProps.State, "TODO")

	plan, err := p.store.CreateRecord(ctx, p.cfg.Collections.Plan, planProps)
	if err != nil {
		return fmt.Errorf("creating study plan record: %w", err)
	}
	slog.Info("created study plan", "plan_id", plan.ID, "date", dateStr)

	todoCount := 0
	for _, subject := range sel.Subjects {
		for _, chapter := range sel.ChaptersBySubject[subject] {
			title := fmt.Sprintf("复习 %s - %s", chapter, subject)

			todoProps := map[string]any{}
			setProperty(todoProps, todoSchema, p.cfg.TodoProps.Title, title)
			setProperty(todoProps, todoSchema, p.cfg.TodoProps.Subject, subject)
			setProperty(todoProps, todoSchema, p.cfg.TodoProps.Due, dateStr)
			setProperty(todoProps, todoSchema, p.cfg.TodoProps.Plan, plan.ID)
			setProperty(todoProps, todoSchema, p.cfg.TodoProps.TaskTypes, strings.Join(p.cfg.TaskTypes, ","))

			if _, err := p.store.CreateRecord(ctx, p.cfg.Collections.Todo, todoProps); err != nil {
				return fmt.Errorf("creating todo %q: %w", title, err)
			}
			todoCount++
		}
	}

	slog.Info("finished creating plan", "date", dateStr, "todos", todoCount)
	return nil
}

// setProperty formats and adds one property when the schema knows it.
func setProperty(props map[string]any, schema *workspace.Collection, name, input string) {
	propSchema, ok := schema.Properties[name]
	if !ok {
		slog.Warn("property not in collection schema, skipping", "property", name)
		return
	}
	payload, ok := workspace.BuildProperty(propSchema, input, false)
	if !ok {
		return
	}
	props[name] = payload
}
