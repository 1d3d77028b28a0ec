package services

//go:generate mockgen -source=tasks.go -destination=tasks_mock_test.go -package=services

import (
	"context"
	"fmt"

	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
)

// TaskCompleter runs the XP award for a task completion.
type TaskCompleter interface {
	CompleteTask(ctx context.Context, taskID int64) (*CompletionResult, error)
}

// TaskService manages a user's quests.
type TaskService struct {
	userReader UserReader
	taskReader TaskReader
	taskWriter TaskWriter
	completer  TaskCompleter
}

// NewTaskService creates a new TaskService.
func NewTaskService(userReader UserReader, taskReader TaskReader, taskWriter TaskWriter, completer TaskCompleter) *TaskService {
	return &TaskService{
		userReader: userReader,
		taskReader: taskReader,
		taskWriter: taskWriter,
		completer:  completer,
	}
}

// Create adds a pending task for an existing user.
func (s *TaskService) Create(ctx context.Context, userID int64, title string, xp int64, dueDate string) (*models.Task, error) {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to load task owner", "userID", userID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	task, err := s.taskWriter.Create(ctx, userID, title, xp, dueDate)
	if err != nil {
		logger.Log.Errorw("failed to create task", "userID", userID, "error", err)
		return nil, err
	}
	logger.Log.Infow("task created", "taskID", task.ID, "userID", userID, "xp", xp, "dueDate", dueDate)
	return task, nil
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.taskReader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get task", "taskID", id, "error", err)
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return task, nil
}

// List returns the user's tasks, limited to one due date when date is set.
func (s *TaskService) List(ctx context.Context, userID int64, date string) ([]models.Task, error) {
	var (
		tasks []models.Task
		err   error
	)
	if date != "" {
		tasks, err = s.taskReader.ListByUserAndDate(ctx, userID, date)
	} else {
		tasks, err = s.taskReader.ListByUser(ctx, userID)
	}
	if err != nil {
		logger.Log.Errorw("failed to list tasks", "userID", userID, "date", date, "error", err)
		return nil, err
	}
	return tasks, nil
}

// Update merges upd onto the task. Setting completed on a pending task runs
// the XP award first; completed tasks cannot be reopened.
func (s *TaskService) Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, *CompletionResult, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var completion *CompletionResult
	if upd.Completed != nil {
		switch {
		case *upd.Completed && !task.Completed:
			completion, err = s.completer.CompleteTask(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			task = completion.Task
		case !*upd.Completed && task.Completed:
			return nil, nil, fmt.Errorf("task %d is already completed: %w", id, models.ErrValidation)
		}
	}

	rest := models.TaskUpdate{Title: upd.Title, DueDate: upd.DueDate}
	if rest.IsEmpty() {
		return task, completion, nil
	}

	updated, err := s.taskWriter.Update(ctx, id, rest)
	if err != nil {
		logger.Log.Errorw("failed to update task", "taskID", id, "error", err)
		return nil, nil, err
	}
	if updated == nil {
		return nil, nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if completion != nil {
		completion.Task = updated
	}
	return updated, completion, nil
}

// Delete removes a task and reports whether it existed.
func (s *TaskService) Delete(ctx context.Context, id int64) (bool, error) {
	existed, err := s.taskWriter.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete task", "taskID", id, "error", err)
		return false, err
	}
	if existed {
		logger.Log.Infow("task deleted", "taskID", id)
	}
	return existed, nil
}
