package planner

import (
	"fmt"
	"reflect"
	"testing"
)

func quiz(id, subject string, chapters ...string) QuizItem {
	return QuizItem{ID: id, Subject: subject, Chapters: chapters}
}

func TestSelectDaily_RanksSubjectsByCount(t *testing.T) {
	pool := []QuizItem{
		quiz("q1", "B", "ch3"),
		quiz("q2", "A", "ch1"),
		quiz("q3", "A", "ch2"),
		quiz("q4", "A", "ch1"),
		quiz("q5", "B", "ch3"),
	}

	sel := SelectDaily(pool, DefaultSelectionConfig())

	want := []string{"A", "B"}
	if !reflect.DeepEqual(sel.Subjects, want) {
		t.Errorf("Subjects = %v, want %v", sel.Subjects, want)
	}
	// Two subjects at two quizzes each under the min-phase.
	if len(sel.ConsumedIDs) != 4 {
		t.Errorf("consumed %d quizzes, want 4", len(sel.ConsumedIDs))
	}
	if !reflect.DeepEqual(sel.ChaptersBySubject["A"], []string{"ch1", "ch2"}) {
		t.Errorf("A chapters = %v, want [ch1 ch2]", sel.ChaptersBySubject["A"])
	}
	if !reflect.DeepEqual(sel.ChaptersBySubject["B"], []string{"ch3"}) {
		t.Errorf("B chapters = %v, want [ch3]", sel.ChaptersBySubject["B"])
	}
}

func TestSelectDaily_RespectsMaxSubjects(t *testing.T) {
	pool := []QuizItem{
		quiz("q1", "A", "ch"), quiz("q2", "B", "ch"),
		quiz("q3", "C", "ch"), quiz("q4", "D", "ch"),
		quiz("q5", "E", "ch"),
	}
	cfg := SelectionConfig{
		MinSubjects:          1,
		MaxSubjects:          3,
		MinQuizzesPerSubject: 1,
		MaxQuizzesTotal:      10,
	}

	sel := SelectDaily(pool, cfg)

	if len(sel.Subjects) > cfg.MaxSubjects {
		t.Errorf("selected %d subjects, cap is %d", len(sel.Subjects), cfg.MaxSubjects)
	}
}

func TestSelectDaily_TieKeepsFirstSeenOrder(t *testing.T) {
	pool := []QuizItem{
		quiz("q1", "Z", "ch1"),
		quiz("q2", "A", "ch1"),
		quiz("q3", "Z", "ch2"),
		quiz("q4", "A", "ch2"),
	}

	sel := SelectDaily(pool, DefaultSelectionConfig())

	want := []string{"Z", "A"}
	if !reflect.DeepEqual(sel.Subjects, want) {
		t.Errorf("Subjects = %v, want %v (ties keep pool order)", sel.Subjects, want)
	}
}

func TestSelectDaily_RespectsMaxQuizzesTotal(t *testing.T) {
	var pool []QuizItem
	for _, subject := range []string{"A", "B", "C", "D"} {
		for i := 0; i < 5; i++ {
			pool = append(pool, quiz(fmt.Sprintf("%s-%d", subject, i), subject, "ch"))
		}
	}
	cfg := SelectionConfig{
		MinSubjects:          2,
		MaxSubjects:          4,
		MinQuizzesPerSubject: 3,
		MaxQuizzesTotal:      7,
	}

	sel := SelectDaily(pool, cfg)

	if len(sel.ConsumedIDs) > cfg.MaxQuizzesTotal {
		t.Errorf("consumed %d quizzes, cap is %d", len(sel.ConsumedIDs), cfg.MaxQuizzesTotal)
	}
	// A and B take 3 each in the min-phase; C adds one and the cap
	// blocks D.
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(sel.Subjects, want) {
		t.Errorf("Subjects = %v, want %v", sel.Subjects, want)
	}
}

func TestSelectDaily_SkipsSubjectThatDoesNotFitWhole(t *testing.T) {
	pool := []QuizItem{
		quiz("a1", "A", "ch1"), quiz("a2", "A", "ch2"),
		quiz("b1", "B", "ch1"), quiz("b2", "B", "ch2"),
		quiz("c1", "C", "ch1"), quiz("c2", "C", "ch2"),
		quiz("d1", "D", "ch1"),
	}
	cfg := SelectionConfig{
		MinSubjects:          3,
		MaxSubjects:          4,
		MinQuizzesPerSubject: 2,
		MaxQuizzesTotal:      5,
	}

	sel := SelectDaily(pool, cfg)

	// C's two quizzes would push the total to six, so C is skipped
	// whole and D's single quiz fills the last slot.
	want := []string{"A", "B", "D"}
	if !reflect.DeepEqual(sel.Subjects, want) {
		t.Errorf("Subjects = %v, want %v", sel.Subjects, want)
	}
	if len(sel.ConsumedIDs) != 5 {
		t.Errorf("consumed %d quizzes, want 5", len(sel.ConsumedIDs))
	}
}

func TestSelectDaily_SingleSubjectPool(t *testing.T) {
	pool := []QuizItem{
		quiz("q1", "A", "ch1"),
		quiz("q2", "A", "ch2"),
		quiz("q3", "A", "ch3"),
	}

	sel := SelectDaily(pool, DefaultSelectionConfig())

	if !reflect.DeepEqual(sel.Subjects, []string{"A"}) {
		t.Errorf("Subjects = %v, want [A]", sel.Subjects)
	}
	if len(sel.ConsumedIDs) != 2 {
		t.Errorf("consumed %d quizzes, want 2 (min per subject)", len(sel.ConsumedIDs))
	}
}

func TestSelectDaily_EmptyPool(t *testing.T) {
	sel := SelectDaily(nil, DefaultSelectionConfig())

	if !sel.Empty() {
		t.Errorf("selection from empty pool should be empty, got %v", sel.Subjects)
	}
	if len(sel.ConsumedIDs) != 0 {
		t.Errorf("empty selection consumed %d quizzes", len(sel.ConsumedIDs))
	}
}

func TestSelectDaily_ChaptersDeduplicatedInOrder(t *testing.T) {
	pool := []QuizItem{
		quiz("q1", "A", "ch2", "ch1"),
		quiz("q2", "A", "ch1", "ch3"),
	}

	sel := SelectDaily(pool, DefaultSelectionConfig())

	want := []string{"ch2", "ch1", "ch3"}
	if !reflect.DeepEqual(sel.ChaptersBySubject["A"], want) {
		t.Errorf("chapters = %v, want %v", sel.ChaptersBySubject["A"], want)
	}
}

func TestSelectDaily_ConsumedMatchesChosenOnly(t *testing.T) {
	pool := []QuizItem{
		quiz("a1", "A", "ch1"), quiz("a2", "A", "ch2"), quiz("a3", "A", "ch3"),
		quiz("b1", "B", "ch1"), quiz("b2", "B", "ch2"), quiz("b3", "B", "ch3"),
	}

	sel := SelectDaily(pool, DefaultSelectionConfig())

	for id := range sel.ConsumedIDs {
		if id == "a3" || id == "b3" {
			t.Errorf("quiz %s beyond the per-subject minimum was consumed", id)
		}
	}
}
