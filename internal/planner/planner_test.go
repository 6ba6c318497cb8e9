package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/studyloop/studyloop/internal/workspace"
)

const (
	quizCol = "quiz-col"
	planCol = "plan-col"
	todoCol = "todo-col"
)

// fakeStore is an in-memory RecordStore. Created plans are indexed by
// their date so planExists sees them on the next query.
type fakeStore struct {
	quizzes   []workspace.Record
	planDates map[string]bool
	plans     []map[string]any
	todos     []map[string]any
	nextID    int
}

func newFakeStore(quizzes ...workspace.Record) *fakeStore {
	return &fakeStore{quizzes: quizzes, planDates: map[string]bool{}}
}

func (f *fakeStore) QueryCollection(_ context.Context, collectionID string, filter *workspace.Filter, _ []workspace.Sort) ([]workspace.Record, error) {
	switch collectionID {
	case quizCol:
		return f.quizzes, nil
	case planCol:
		if filter != nil && filter.Date != nil && f.planDates[filter.Date.Equals] {
			return []workspace.Record{{ID: "existing-plan"}}, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (f *fakeStore) RetrieveCollection(_ context.Context, collectionID string) (*workspace.Collection, error) {
	switch collectionID {
	case planCol:
		return collectionSchema(map[string]string{
			"Name":     "title",
			"Date":     "date",
			"Subjects": "rich_text",
			"HasQuiz":  "checkbox",
			"State":    "rich_text",
		}), nil
	case todoCol:
		return collectionSchema(map[string]string{
			"Name":      "title",
			"Subject":   "rich_text",
			"Due":       "date",
			"Plan":      "relation",
			"TaskTypes": "rich_text",
		}), nil
	}
	return nil, fmt.Errorf("unknown collection %s", collectionID)
}

func (f *fakeStore) CreateRecord(_ context.Context, collectionID string, properties map[string]any) (*workspace.Record, error) {
	f.nextID++
	rec := &workspace.Record{ID: fmt.Sprintf("rec-%d", f.nextID)}
	switch collectionID {
	case planCol:
		f.plans = append(f.plans, properties)
		if date, ok := properties["Date"].(map[string]any); ok {
			if d, ok := date["date"].(map[string]any); ok {
				if start, ok := d["start"].(string); ok {
					f.planDates[start] = true
				}
			}
		}
	case todoCol:
		f.todos = append(f.todos, properties)
	}
	return rec, nil
}

func collectionSchema(types map[string]string) *workspace.Collection {
	props := make(map[string]workspace.PropertySchema, len(types))
	for name, typ := range types {
		props[name] = workspace.PropertySchema{Name: name, Type: typ}
	}
	return &workspace.Collection{Properties: props}
}

// dueRecord builds a raw quiz record the way the API would return it.
func dueRecord(t *testing.T, id, subject, chapter, nextReview string) workspace.Record {
	t.Helper()
	raw := map[string]any{
		"id": id,
		"properties": map[string]any{
			"Subject": map[string]any{
				"type":   "select",
				"select": map[string]any{"name": subject},
			},
			"Chapters": map[string]any{
				"type":         "multi_select",
				"multi_select": []map[string]any{{"name": chapter}},
			},
			"NextReview": map[string]any{
				"type": "date",
				"date": map[string]any{"start": nextReview},
			},
		},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var rec workspace.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return rec
}

func testConfig() Config {
	return Config{
		Collections:     Collections{Quiz: quizCol, Plan: planCol, Todo: todoCol},
		CurrentSubjects: []string{"A", "B", "C"},
		QuizProps: QuizProperties{
			Subject: "Subject", Chapters: "Chapters",
			NextReview: "NextReview", ReviewCount: "ReviewCount",
		},
		PlanProps: PlanProperties{
			Title: "Name", Date: "Date", Subjects: "Subjects",
			HasQuiz: "HasQuiz", State: "State",
		},
		TodoProps: TodoProperties{
			Title: "Name", Subject: "Subject", Due: "Due",
			Plan: "Plan", TaskTypes: "TaskTypes",
		},
		TaskTypes: []string{"review"},
		Now:       func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func TestPlanDaily_CreatesPlanAndTodos(t *testing.T) {
	store := newFakeStore(
		dueRecord(t, "q1", "A", "ch1", "2025-06-01"),
		dueRecord(t, "q2", "A", "ch2", "2025-06-02"),
		dueRecord(t, "q3", "B", "ch3", "2025-06-01"),
		dueRecord(t, "q4", "B", "ch4", "2025-06-03"),
	)
	p := New(store, testConfig())

	if err := p.PlanDaily(context.Background()); err != nil {
		t.Fatalf("PlanDaily() error = %v", err)
	}

	if len(store.plans) != 1 {
		t.Fatalf("created %d plans, want 1", len(store.plans))
	}
	if !store.planDates["2025-06-01"] {
		t.Error("plan not dated today")
	}
	// One todo per (subject, chapter): two subjects with two chapters
	// each.
	if len(store.todos) != 4 {
		t.Errorf("created %d todos, want 4", len(store.todos))
	}
}

func TestPlanDaily_SkipsWhenPlanExists(t *testing.T) {
	store := newFakeStore(dueRecord(t, "q1", "A", "ch1", "2025-06-01"))
	store.planDates["2025-06-01"] = true
	p := New(store, testConfig())

	if err := p.PlanDaily(context.Background()); err != nil {
		t.Fatalf("PlanDaily() error = %v", err)
	}

	if len(store.plans) != 0 {
		t.Errorf("created %d plans despite an existing one", len(store.plans))
	}
	if len(store.todos) != 0 {
		t.Errorf("created %d todos despite an existing plan", len(store.todos))
	}
}

func TestPlanDaily_SecondRunIsNoOp(t *testing.T) {
	store := newFakeStore(
		dueRecord(t, "q1", "A", "ch1", "2025-06-01"),
		dueRecord(t, "q2", "B", "ch2", "2025-06-01"),
	)
	p := New(store, testConfig())

	for i := 0; i < 2; i++ {
		if err := p.PlanDaily(context.Background()); err != nil {
			t.Fatalf("PlanDaily() run %d error = %v", i+1, err)
		}
	}

	if len(store.plans) != 1 {
		t.Errorf("created %d plans across two runs, want 1", len(store.plans))
	}
}

func TestPlanDaily_EmptyPoolIsNoOp(t *testing.T) {
	store := newFakeStore(
		dueRecord(t, "q1", "X", "ch1", "2025-06-01"), // not a current subject
	)
	p := New(store, testConfig())

	if err := p.PlanDaily(context.Background()); err != nil {
		t.Fatalf("PlanDaily() error = %v", err)
	}
	if len(store.plans) != 0 {
		t.Errorf("created %d plans from an unplannable pool", len(store.plans))
	}
}

func TestPlanPeriod_NeverAssignsQuizTwice(t *testing.T) {
	store := newFakeStore(
		dueRecord(t, "q1", "A", "ch1", "2025-06-01"),
		dueRecord(t, "q2", "A", "ch2", "2025-06-02"),
		dueRecord(t, "q3", "A", "ch3", "2025-06-03"),
		dueRecord(t, "q4", "B", "ch4", "2025-06-01"),
		dueRecord(t, "q5", "B", "ch5", "2025-06-02"),
		dueRecord(t, "q6", "B", "ch6", "2025-06-03"),
		dueRecord(t, "q7", "C", "ch7", "2025-06-01"),
		dueRecord(t, "q8", "C", "ch8", "2025-06-02"),
	)
	p := New(store, testConfig())

	if err := p.PlanPeriod(context.Background(), 3); err != nil {
		t.Fatalf("PlanPeriod() error = %v", err)
	}

	if len(store.plans) < 2 {
		t.Fatalf("created %d plans, want at least 2", len(store.plans))
	}
	// Every quiz chapter lands in at most one day's todos.
	seen := map[string]int{}
	for _, todo := range store.todos {
		title := fmt.Sprintf("%v", todo["Name"])
		seen[title]++
		if seen[title] > 1 {
			t.Errorf("todo %q created more than once across the period", title)
		}
	}
}

func TestPlanPeriod_StopsWhenPoolExhausted(t *testing.T) {
	store := newFakeStore(
		dueRecord(t, "q1", "A", "ch1", "2025-06-01"),
		dueRecord(t, "q2", "B", "ch2", "2025-06-01"),
	)
	p := New(store, testConfig())

	if err := p.PlanPeriod(context.Background(), 10); err != nil {
		t.Fatalf("PlanPeriod() error = %v", err)
	}

	// Both quizzes fit the first day; nothing is left for the rest.
	if len(store.plans) != 1 {
		t.Errorf("created %d plans, want 1", len(store.plans))
	}
}

func TestQuizFromRecord(t *testing.T) {
	rec := dueRecord(t, "q1", "A", "ch1", "2025-06-01")

	item := QuizFromRecord(rec, testConfig().QuizProps)

	if item.ID != "q1" || item.Subject != "A" {
		t.Errorf("item = %+v, want id q1 subject A", item)
	}
	if len(item.Chapters) != 1 || item.Chapters[0] != "ch1" {
		t.Errorf("chapters = %v, want [ch1]", item.Chapters)
	}
	if item.NextReview != "2025-06-01" {
		t.Errorf("next review = %q, want 2025-06-01", item.NextReview)
	}
}

func TestQuizFromRecord_MissingPropertiesDegrade(t *testing.T) {
	rec := workspace.Record{ID: "q1"}

	item := QuizFromRecord(rec, testConfig().QuizProps)

	if item.Subject != "" || len(item.Chapters) != 0 {
		t.Errorf("expected zero values, got %+v", item)
	}
}
