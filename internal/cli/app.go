package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyloop/studyloop/internal/catalog"
	"github.com/studyloop/studyloop/internal/grader"
	"github.com/studyloop/studyloop/internal/planner"
	"github.com/studyloop/studyloop/internal/platform/config"
	"github.com/studyloop/studyloop/internal/scheduler"
	"github.com/studyloop/studyloop/internal/snapshot"
	"github.com/studyloop/studyloop/internal/workspace"
)

// app wires configuration into the components a command needs.
type app struct {
	cfg   *config.Config
	study config.Study
	ws    *workspace.Client
}

// newApp validates configuration and builds the workspace client.
func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	study, err := config.LoadStudy(cfg.StudyPath)
	if err != nil {
		return nil, err
	}

	var opts []workspace.Option
	if cfg.Workspace.BaseURL != "" {
		opts = append(opts, workspace.WithBaseURL(cfg.Workspace.BaseURL))
	}
	ws, err := workspace.NewClient(cfg.Workspace.Token, opts...)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, study: study, ws: ws}, nil
}

func (a *app) catalog() (catalog.Catalog, error) {
	return catalog.Load(a.cfg.CatalogPath())
}

// planner resolves the planning collections and builds a Planner.
func (a *app) planner() (*planner.Planner, error) {
	cat, err := a.catalog()
	if err != nil {
		return nil, err
	}
	quizID, err := cat.IDFor(a.study.Collections.Quiz)
	if err != nil {
		return nil, err
	}
	planID, err := cat.IDFor(a.study.Collections.Plan)
	if err != nil {
		return nil, err
	}
	todoID, err := cat.IDFor(a.study.Collections.Todo)
	if err != nil {
		return nil, err
	}

	return planner.New(a.ws, planner.Config{
		Collections: planner.Collections{
			Quiz: quizID,
			Plan: planID,
			Todo: todoID,
		},
		CurrentSubjects: a.study.CurrentSubjects,
		Selection:       a.study.Selection,
		LookaheadDays:   a.study.LookaheadDays,
		QuizProps: planner.QuizProperties{
			Subject:     a.study.Properties.Quiz.Subject,
			Chapters:    a.study.Properties.Quiz.Chapters,
			NextReview:  a.study.Properties.Quiz.NextReview,
			ReviewCount: a.study.Properties.Quiz.ReviewCount,
		},
		PlanProps: a.study.Properties.Plan,
		TodoProps: a.study.Properties.Todo,
		TaskTypes: a.study.TodoTaskTypes,
	}), nil
}

// updater resolves the review collections and builds an Updater, with
// grading enabled when a grader API key is configured.
func (a *app) updater() (*scheduler.Updater, error) {
	cat, err := a.catalog()
	if err != nil {
		return nil, err
	}
	quizID, err := cat.IDFor(a.study.Collections.Quiz)
	if err != nil {
		return nil, err
	}
	logID, err := cat.IDFor(a.study.Collections.ReviewLog)
	if err != nil {
		return nil, err
	}

	var grade scheduler.GradeFunc
	if a.cfg.Grader.APIKey == "" {
		slog.Warn("no grader API key configured, reviews will be rescheduled without evaluation")
	} else {
		var opts []grader.Option
		if a.cfg.Grader.BaseURL != "" {
			opts = append(opts, grader.WithBaseURL(a.cfg.Grader.BaseURL))
		}
		if a.cfg.Grader.Model != "" {
			opts = append(opts, grader.WithModel(a.cfg.Grader.Model))
		}
		g, err := grader.New(a.cfg.Grader.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("configuring grader: %w", err)
		}
		grade = func(ctx context.Context, question, reference, answer string) (string, string, error) {
			eval, err := g.Evaluate(ctx, question, reference, answer)
			if err != nil {
				return "", "", err
			}
			return eval.Evaluation, eval.Feedback, nil
		}
	}

	return scheduler.NewUpdater(a.ws, scheduler.Config{
		QuizCollectionID: quizID,
		LogCollectionID:  logID,
		LogProps:         a.study.Properties.ReviewLog,
		QuizProps: scheduler.QuizProperties{
			NextReview:  a.study.Properties.Quiz.NextReview,
			ReviewCount: a.study.Properties.Quiz.ReviewCount,
			Question:    a.study.Properties.Quiz.Question,
			Answer:      a.study.Properties.Quiz.Answer,
		},
		Grade: grade,
	}), nil
}

func (a *app) snapshotter() *snapshot.Snapshotter {
	return snapshot.New(a.ws, a.cfg.Data.Dir)
}
