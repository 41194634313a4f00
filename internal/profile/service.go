// Package profile reads, merges and writes a user's study record.
//
// Updates are whole-field replacements computed from the record as read. Two
// sessions of the same account writing the same field race: the last write
// wins and the earlier one is lost. The returned user is the merge as it was
// written, not a re-read.
package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

type Service struct {
	store    backend.DocumentStore
	logger   *zap.SugaredLogger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewService(store backend.DocumentStore, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    utilities.NewKSUID,
	}
}

func (s *Service) load(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.store.Get(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrProfileNotFound)
	}
	return u, err
}

// UpdateUserData merges patch over the stored record and persists the result.
func (s *Service) UpdateUserData(ctx context.Context, userID string, patch entity.UserDataPatch) (*entity.User, error) {
	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, cur, patch)
}

func (s *Service) write(ctx context.Context, cur *entity.User, patch entity.UserDataPatch) (*entity.User, error) {
	if patch.Empty() {
		return cur, nil
	}
	merged, err := patch.Apply(cur.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := s.store.UpdateData(ctx, cur.ID, merged); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", cur.ID, common.ErrProfileNotFound)
		}
		return nil, err
	}
	s.logger.Debugw("user data updated", "user_id", cur.ID, "topics", patch.Topics.Set, "tasks", patch.Tasks.Set)
	cur.Data = merged
	return cur, nil
}

// CycleTopicStatus advances one topic to its next status, wrapping from
// mastered back to not started.
func (s *Service) CycleTopicStatus(ctx context.Context, userID string, topicID int) (*entity.User, error) {
	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics := cur.Data.Clone().Topics
	found := false
	for i := range topics {
		if topics[i].ID == topicID {
			topics[i].Status = topics[i].Status.Next()
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("topic %d: %w", topicID, common.ErrItemNotFound)
	}
	return s.write(ctx, cur, entity.UserDataPatch{Topics: entity.Some(topics)})
}

// NewTask is the input of AddTask.
type NewTask struct {
	Text string `json:"text" validate:"required,max=500"`
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (s *Service) AddTask(ctx context.Context, userID string, in NewTask) (*entity.User, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.Date = strings.TrimSpace(in.Date)
	if err := s.validate.Struct(in); err != nil {
		return nil, common.Validation("task needs text and a YYYY-MM-DD date")
	}
	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := append(cur.Data.Clone().Tasks, entity.PlannerTask{
		ID:   s.newID(),
		Text: in.Text,
		Date: in.Date,
	})
	return s.write(ctx, cur, entity.UserDataPatch{Tasks: entity.Some(tasks)})
}

func (s *Service) ToggleTask(ctx context.Context, userID, taskID string) (*entity.User, error) {
	return s.editTasks(ctx, userID, taskID, func(tasks []entity.PlannerTask, i int) []entity.PlannerTask {
		tasks[i].Completed = !tasks[i].Completed
		return tasks
	})
}

func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) (*entity.User, error) {
	return s.editTasks(ctx, userID, taskID, func(tasks []entity.PlannerTask, i int) []entity.PlannerTask {
		return append(tasks[:i], tasks[i+1:]...)
	})
}

func (s *Service) editTasks(ctx context.Context, userID, taskID string, edit func([]entity.PlannerTask, int) []entity.PlannerTask) (*entity.User, error) {
	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := cur.Data.Clone().Tasks
	for i := range tasks {
		if tasks[i].ID == taskID {
			return s.write(ctx, cur, entity.UserDataPatch{Tasks: entity.Some(edit(tasks, i))})
		}
	}
	return nil, fmt.Errorf("task %s: %w", taskID, common.ErrItemNotFound)
}

// Summary is the dashboard view of a study record for one day.
type Summary struct {
	TopicCounts     map[entity.TopicStatus]int `json:"topic_counts"`
	TopicTotal      int                        `json:"topic_total"`
	MasteredPercent int                        `json:"mastered_percent"`
	Date            string                     `json:"date"`
	Tasks           []entity.PlannerTask       `json:"tasks"`
	TasksCompleted  int                        `json:"tasks_completed"`
	TasksTotal      int                        `json:"tasks_total"`
}

// Summary reports topic progress and the tasks planned for date. An empty
// date means today.
func (s *Service) Summary(ctx context.Context, userID, date string) (*Summary, error) {
	if date == "" {
		date = entity.FormatDate(s.now())
	}
	if !entity.ValidDate(date) {
		return nil, common.Validation(fmt.Sprintf("invalid date %q", date))
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(u.Data, date), nil
}

func summarize(d entity.UserData, date string) *Summary {
	sum := &Summary{
		TopicCounts: make(map[entity.TopicStatus]int, len(entity.TopicStatuses)),
		TopicTotal:  len(d.Topics),
		Date:        date,
		Tasks:       []entity.PlannerTask{},
	}
	for _, st := range entity.TopicStatuses {
		sum.TopicCounts[st] = 0
	}
	for _, t := range d.Topics {
		sum.TopicCounts[t.Status]++
	}
	if sum.TopicTotal > 0 {
		ratio := float64(sum.TopicCounts[entity.TopicMastered]) / float64(sum.TopicTotal)
		sum.MasteredPercent = int(math.Round(ratio * 100))
	}
	for _, t := range d.Tasks {
		if t.Date != date {
			continue
		}
		sum.Tasks = append(sum.Tasks, t)
		sum.TasksTotal++
		if t.Completed {
			sum.TasksCompleted++
		}
	}
	return sum
}
