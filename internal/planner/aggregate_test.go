package planner

import (
	"reflect"
	"testing"
)

func TestFilterCurrent(t *testing.T) {
	items := []QuizItem{
		quiz("q1", "A", "ch1"),
		quiz("q2", "", "ch1"),
		quiz("q3", "A"),
		quiz("q4", "X", "ch1"),
		quiz("q5", "B", "ch2"),
	}

	out := FilterCurrent(items, []string{"A", "B"})

	var ids []string
	for _, item := range out {
		ids = append(ids, item.ID)
	}
	want := []string{"q1", "q5"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("kept %v, want %v", ids, want)
	}
}

func TestFilterCurrent_PreservesOrder(t *testing.T) {
	items := []QuizItem{
		quiz("q3", "B", "ch"),
		quiz("q1", "A", "ch"),
		quiz("q2", "B", "ch"),
	}

	out := FilterCurrent(items, []string{"A", "B"})

	for i, item := range out {
		if item.ID != items[i].ID {
			t.Fatalf("order changed at %d: got %s, want %s", i, item.ID, items[i].ID)
		}
	}
}

func TestAggregate_MultiChapterQuizAppearsInEachBucket(t *testing.T) {
	items := []QuizItem{
		quiz("q1", "A", "ch1", "ch2"),
		quiz("q2", "A", "ch1"),
	}

	agg := Aggregate(items, []string{"A"})

	if len(agg["A"]["ch1"]) != 2 {
		t.Errorf("ch1 has %d quizzes, want 2", len(agg["A"]["ch1"]))
	}
	if len(agg["A"]["ch2"]) != 1 {
		t.Errorf("ch2 has %d quizzes, want 1", len(agg["A"]["ch2"]))
	}
}

func TestAggregate_ExcludesFilteredSubjects(t *testing.T) {
	items := []QuizItem{
		quiz("q1", "A", "ch1"),
		quiz("q2", "X", "ch1"),
	}

	agg := Aggregate(items, []string{"A"})

	if _, ok := agg["X"]; ok {
		t.Error("subject outside the current list was aggregated")
	}
	if _, ok := agg["A"]; !ok {
		t.Error("current subject missing from aggregation")
	}
}
