package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/progression"
)

// CompletionResult describes the outcome of completing a task.
type CompletionResult struct {
	Task      *models.Task
	User      *models.User // nil when the task was already completed
	Awarded   int64
	LeveledUp bool
}

// ProgressService awards XP for completed tasks and focus sessions.
type ProgressService struct {
	userReader  UserReader
	userWriter  UserWriter
	taskReader  TaskReader
	taskWriter  TaskWriter
	cache       UserCache
	kafkaWriter KafkaWriter
	recorder    ProgressRecorder

	locks *keyedMutex
	now   func() time.Time
}

// NewProgressService creates a new ProgressService. cache, kafkaWriter and
// recorder may be nil.
func NewProgressService(
	userReader UserReader,
	userWriter UserWriter,
	taskReader TaskReader,
	taskWriter TaskWriter,
	cache UserCache,
	kafkaWriter KafkaWriter,
	recorder ProgressRecorder,
) *ProgressService {
	return &ProgressService{
		userReader:  userReader,
		userWriter:  userWriter,
		taskReader:  taskReader,
		taskWriter:  taskWriter,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		recorder:    recorder,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// CompleteTask marks a task completed and credits its XP to the owner.
// Completing an already completed task is a no-op that returns the task as is.
func (s *ProgressService) CompleteTask(ctx context.Context, taskID int64) (*CompletionResult, error) {
	task, err := s.taskReader.GetByID(ctx, taskID)
	if err != nil {
		logger.Log.Errorw("failed to load task", "taskID", taskID, "error", err)
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
	}

	// userID is immutable, so the lock key is safe to take from the first read.
	unlock := s.locks.Lock(task.UserID)
	defer unlock()

	task, err = s.taskReader.GetByID(ctx, taskID)
	if err != nil {
		logger.Log.Errorw("failed to reload task", "taskID", taskID, "error", err)
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
	}
	if task.Completed {
		logger.Log.Infow("task already completed, no XP awarded", "taskID", taskID)
		return &CompletionResult{Task: task}, nil
	}

	user, err := s.userReader.GetByID(ctx, task.UserID)
	if err != nil {
		logger.Log.Errorw("failed to load task owner", "taskID", taskID, "userID", task.UserID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("owner %d of task %d: %w", task.UserID, taskID, models.ErrNotFound)
	}

	res := progression.ApplyXP(user.XP, user.Level, task.XP)
	updatedUser, err := s.userWriter.Update(ctx, user.ID, models.UserUpdate{
		XP:    &res.NewXP,
		Level: &res.NewLevel,
	})
	if err != nil {
		logger.Log.Errorw("failed to save user progress", "userID", user.ID, "error", err)
		return nil, err
	}
	if updatedUser == nil {
		return nil, fmt.Errorf("owner %d of task %d: %w", task.UserID, taskID, models.ErrNotFound)
	}

	completed := true
	updatedTask, err := s.taskWriter.Update(ctx, taskID, models.TaskUpdate{Completed: &completed})
	if err == nil && updatedTask == nil {
		err = fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
	}
	if err != nil {
		logger.Log.Errorw("failed to mark task completed, restoring user progress", "taskID", taskID, "userID", user.ID, "error", err)
		s.restore(ctx, user)
		return nil, err
	}
	evictUser(ctx, s.cache, user.ID)

	logger.Log.Infow("task completed",
		"taskID", taskID, "userID", user.ID, "xp", task.XP,
		"totalXP", updatedUser.XP, "level", updatedUser.Level, "leveledUp", res.LeveledUp,
	)
	s.record(models.OperationTaskCompleted, task.XP, res.LeveledUp)
	publishEvents(ctx, s.kafkaWriter,
		awardEvents(models.OperationTaskCompleted, taskID, task.XP, updatedUser, res.LeveledUp, s.now())...)

	return &CompletionResult{
		Task:      updatedTask,
		User:      updatedUser,
		Awarded:   task.XP,
		LeveledUp: res.LeveledUp,
	}, nil
}

// AwardFocusXP credits a caller-supplied XP amount for a finished focus session.
// The amount is trusted as given.
func (s *ProgressService) AwardFocusXP(ctx context.Context, userID, xp int64) (*models.User, bool, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to load user", "userID", userID, "error", err)
		return nil, false, err
	}
	if user == nil {
		return nil, false, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	res := progression.ApplyXP(user.XP, user.Level, xp)
	updated, err := s.userWriter.Update(ctx, userID, models.UserUpdate{
		XP:    &res.NewXP,
		Level: &res.NewLevel,
	})
	if err != nil {
		logger.Log.Errorw("failed to save focus XP", "userID", userID, "xp", xp, "error", err)
		return nil, false, err
	}
	if updated == nil {
		return nil, false, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	evictUser(ctx, s.cache, userID)

	logger.Log.Infow("focus XP awarded",
		"userID", userID, "xp", xp, "totalXP", updated.XP, "level", updated.Level, "leveledUp", res.LeveledUp,
	)
	s.record(models.OperationFocusSession, xp, res.LeveledUp)
	publishEvents(ctx, s.kafkaWriter,
		awardEvents(models.OperationFocusSession, 0, xp, updated, res.LeveledUp, s.now())...)

	return updated, res.LeveledUp, nil
}

// restore puts back the xp and level a user had before a failed completion.
func (s *ProgressService) restore(ctx context.Context, prev *models.User) {
	if _, err := s.userWriter.Update(ctx, prev.ID, models.UserUpdate{
		XP:    &prev.XP,
		Level: &prev.Level,
	}); err != nil {
		logger.Log.Errorw("failed to restore user progress", "userID", prev.ID, "error", err)
	}
	evictUser(ctx, s.cache, prev.ID)
}

func (s *ProgressService) record(operation string, xp int64, leveledUp bool) {
	if s.recorder != nil {
		s.recorder.RecordAward(operation, xp, leveledUp)
	}
}
