package planner

import (
	"log/slog"
	"sort"
)

// SelectionConfig bounds a single day's selection.
type SelectionConfig struct {
	MinSubjects          int `yaml:"min_subjects"`
	MaxSubjects          int `yaml:"max_subjects"`
	MinQuizzesPerSubject int `yaml:"min_quizzes_per_subject"`
	MaxQuizzesTotal      int `yaml:"max_quizzes_total"`
}

// DefaultSelectionConfig returns the standard daily bounds.
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		MinSubjects:          2,
		MaxSubjects:          3,
		MinQuizzesPerSubject: 2,
		MaxQuizzesTotal:      6,
	}
}

func (c SelectionConfig) withDefaults() SelectionConfig {
	d := DefaultSelectionConfig()
	if c.MinSubjects <= 0 {
		c.MinSubjects = d.MinSubjects
	}
	if c.MaxSubjects <= 0 {
		c.MaxSubjects = d.MaxSubjects
	}
	if c.MinQuizzesPerSubject <= 0 {
		c.MinQuizzesPerSubject = d.MinQuizzesPerSubject
	}
	if c.MaxQuizzesTotal <= 0 {
		c.MaxQuizzesTotal = d.MaxQuizzesTotal
	}
	return c
}

// Selection is one day's worth of subject and chapter assignments.
// Subjects keeps ranking order with skips removed; ChaptersBySubject
// holds the distinct chapters of each subject's chosen quizzes in
// first-seen order; ConsumedIDs are the chosen quiz ids.
type Selection struct {
	Subjects          []string
	ChaptersBySubject map[string][]string
	ConsumedIDs       map[string]struct{}
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.Subjects) == 0
}

func emptySelection() Selection {
	return Selection{
		ChaptersBySubject: make(map[string][]string),
		ConsumedIDs:       make(map[string]struct{}),
	}
}

// SelectDaily picks a bounded, diversity-respecting subset of the pool
// for one day. Subjects are ranked descending by available quiz count;
// ties keep first-seen pool order (a deliberate, documented tie-break).
// Until MinSubjects is reached, each subject contributes up to
// MinQuizzesPerSubject quizzes, but only if the whole contribution fits
// under MaxQuizzesTotal; afterwards subjects contribute one quiz each
// until MaxSubjects or MaxQuizzesTotal is hit. A subject that does not
// fit is skipped whole, never taken partially.
func SelectDaily(pool []QuizItem, cfg SelectionConfig) Selection {
	cfg = cfg.withDefaults()

	if len(pool) == 0 {
		slog.Warn("no quizzes available for selection")
		return emptySelection()
	}

	bySubject := make(map[string][]QuizItem)
	var order []string
	for _, item := range pool {
		if _, seen := bySubject[item.Subject]; !seen {
			order = append(order, item.Subject)
		}
		bySubject[item.Subject] = append(bySubject[item.Subject], item)
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(bySubject[ranked[i]]) > len(bySubject[ranked[j]])
	})

	sel := emptySelection()
	chosen := make(map[string][]QuizItem)
	total := 0

	for _, subject := range ranked {
		if len(sel.Subjects) >= cfg.MaxSubjects {
			break
		}
		available := bySubject[subject]

		var take int
		if len(sel.Subjects) < cfg.MinSubjects {
			take = min(len(available), cfg.MinQuizzesPerSubject)
		} else {
			take = 1
		}
		if total+take > cfg.MaxQuizzesTotal {
			continue
		}

		chosen[subject] = available[:take]
		sel.Subjects = append(sel.Subjects, subject)
		total += take
	}

	for _, subject := range sel.Subjects {
		seen := make(map[string]bool)
		for _, item := range chosen[subject] {
			sel.ConsumedIDs[item.ID] = struct{}{}
			for _, chapter := range item.Chapters {
				if !seen[chapter] {
					seen[chapter] = true
					sel.ChaptersBySubject[subject] = append(sel.ChaptersBySubject[subject], chapter)
				}
			}
		}
	}

	slog.Info("daily selection complete",
		"subjects", sel.Subjects, "quizzes", total)
	return sel
}
