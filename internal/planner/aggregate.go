package planner

import "log/slog"

// FilterCurrent drops items with no subject, no chapters, or a subject
// outside the configured current set, preserving input order. Dropped
// items are logged, never an error.
func FilterCurrent(items []QuizItem, currentSubjects []string) []QuizItem {
	current := make(map[string]bool, len(currentSubjects))
	for _, s := range currentSubjects {
		current[s] = true
	}

	out := make([]QuizItem, 0, len(items))
	for _, item := range items {
		if item.Subject == "" || len(item.Chapters) == 0 {
			slog.Warn("quiz missing subject or chapters, skipping", "quiz_id", item.ID)
			continue
		}
		if !current[item.Subject] {
			slog.Info("quiz subject not in current list, skipping",
				"quiz_id", item.ID, "subject", item.Subject)
			continue
		}
		out = append(out, item)
	}
	return out
}

// Aggregate groups quizzes by subject, then by chapter. An item tagged
// with N chapters appears under each of its N chapter buckets. Items
// failing the current-subject filter are excluded. Pure.
func Aggregate(items []QuizItem, currentSubjects []string) map[string]map[string][]QuizItem {
	aggregated := make(map[string]map[string][]QuizItem)

	for _, item := range FilterCurrent(items, currentSubjects) {
		chapters, ok := aggregated[item.Subject]
		if !ok {
			chapters = make(map[string][]QuizItem)
			aggregated[item.Subject] = chapters
		}
		for _, chapter := range item.Chapters {
			chapters[chapter] = append(chapters[chapter], item)
		}
	}

	subjects := make([]string, 0, len(aggregated))
	for s := range aggregated {
		subjects = append(subjects, s)
	}
	slog.Info("aggregation complete", "subjects", subjects)
	return aggregated
}
