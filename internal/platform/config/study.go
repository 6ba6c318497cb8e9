package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studyloop/studyloop/internal/planner"
	"github.com/studyloop/studyloop/internal/scheduler"
)

// Study is the study-side configuration loaded from a YAML file: the
// current subjects, the daily selection bounds, and how the workspace
// collections and their properties are named.
type Study struct {
	CurrentSubjects []string                `yaml:"current_subjects"`
	Selection       planner.SelectionConfig `yaml:"selection"`
	LookaheadDays   int                     `yaml:"lookahead_days"`
	TodoTaskTypes   []string                `yaml:"todo_task_types"`
	Collections     CollectionTitles        `yaml:"collections"`
	Properties      PropertyNames           `yaml:"properties"`
}

// CollectionTitles names the workspace collections as they appear in
// the catalog file.
type CollectionTitles struct {
	Quiz      string `yaml:"quiz"`
	Plan      string `yaml:"plan"`
	Todo      string `yaml:"todo"`
	ReviewLog string `yaml:"review_log"`
}

// PropertyNames names the typed properties of each collection.
type PropertyNames struct {
	Quiz      QuizPropertyNames       `yaml:"quiz"`
	Plan      planner.PlanProperties  `yaml:"plan"`
	Todo      planner.TodoProperties  `yaml:"todo"`
	ReviewLog scheduler.LogProperties `yaml:"review_log"`
}

// QuizPropertyNames covers both the planner's and the scheduler's view
// of the quiz collection.
type QuizPropertyNames struct {
	Subject     string `yaml:"subject"`
	Chapters    string `yaml:"chapters"`
	NextReview  string `yaml:"next_review"`
	ReviewCount string `yaml:"review_count"`
	Question    string `yaml:"question"`
	Answer      string `yaml:"answer"`
}

// DefaultStudy returns the built-in study configuration, matching the
// workspace layout the tool was written against.
func DefaultStudy() Study {
	return Study{
		CurrentSubjects: []string{
			"计算机网络",
			"计算机组成原理",
			"操作系统",
			"概率论与数理统计",
		},
		Selection:     planner.DefaultSelectionConfig(),
		LookaheadDays: 7,
		TodoTaskTypes: []string{"学习", "复习"},
		Collections: CollectionTitles{
			Quiz:      "Quiz库",
			Plan:      "学习计划",
			Todo:      "Todo库",
			ReviewLog: "Quiz回顾日志",
		},
		Properties: PropertyNames{
			Quiz: QuizPropertyNames{
				Subject:     "所属课程",
				Chapters:    "章节/关键词",
				NextReview:  "下次回顾时间",
				ReviewCount: "回顾次数",
				Question:    "题目",
				Answer:      "参考答案",
			},
			Plan: planner.PlanProperties{
				Title:    "关键词",
				Date:     "Date",
				Subjects: "科目",
				HasQuiz:  "是否含quiz",
				State:    "学习状态",
			},
			Todo: planner.TodoProperties{
				Title:     "ToDo名称",
				Subject:   "科目",
				Due:       "预计完成时间",
				Plan:      "关联计划",
				TaskTypes: "任务类型",
			},
			ReviewLog: scheduler.LogProperties{
				Outcome:    "回顾效果",
				Quiz:       "所属Quiz题目",
				Reflection: "回顾反思",
				Evaluation: "AI评估",
				Feedback:   "AI反馈",
			},
		},
	}
}

// LoadStudy reads the study file, overlaying it on the defaults. A
// missing file just means defaults; a malformed file is an error.
func LoadStudy(path string) (Study, error) {
	study := DefaultStudy()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("no study file, using defaults", "path", path)
		return study, nil
	}
	if err != nil {
		return study, fmt.Errorf("reading study file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &study); err != nil {
		return study, fmt.Errorf("parsing study file %s: %w", path, err)
	}

	slog.Info("study file loaded", "path", path, "subjects", len(study.CurrentSubjects))
	return study, nil
}
