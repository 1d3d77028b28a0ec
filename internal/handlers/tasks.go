package handlers

//go:generate mockgen -source=tasks.go -destination=tasks_mock_test.go -package=handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/services"
)

// TaskLister lists a user's tasks, optionally for one due date.
type TaskLister interface {
	List(ctx context.Context, userID int64, date string) ([]models.Task, error)
}

// TaskCreator creates tasks.
type TaskCreator interface {
	Create(ctx context.Context, userID int64, title string, xp int64, dueDate string) (*models.Task, error)
}

// TaskGetter loads a single task.
type TaskGetter interface {
	Get(ctx context.Context, id int64) (*models.Task, error)
}

// TaskUpdater patches a task, completing it when asked.
type TaskUpdater interface {
	TaskGetter
	Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, *services.CompletionResult, error)
}

// TaskDeleter removes a task.
type TaskDeleter interface {
	TaskGetter
	Delete(ctx context.Context, id int64) (bool, error)
}

// CreateTaskRequest represents the JSON body for a new quest
// swagger:model CreateTaskRequest
type CreateTaskRequest struct {
	// Title
	// required: true
	// default: Setup Firebase
	Title string `json:"title" validate:"required,max=200"`

	// XP reward, fixed at creation
	// required: true
	// default: 30
	XP int64 `json:"xp" validate:"gt=0"`

	// Due date, YYYY-MM-DD
	// required: true
	// default: 2026-05-01
	DueDate string `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

// UpdateTaskRequest is a partial task update. Omitted fields are kept.
// swagger:model UpdateTaskRequest
type UpdateTaskRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	DueDate   *string `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Completed *bool   `json:"completed,omitempty"`
}

// UpdateTaskResponse is the patched task. User, awarded and leveledUp are set
// only when the patch completed the task.
// swagger:model UpdateTaskResponse
type UpdateTaskResponse struct {
	Task      *models.Task  `json:"task"`
	User      *UserResponse `json:"user,omitempty"`
	Awarded   int64         `json:"awarded,omitempty"`
	LeveledUp bool          `json:"leveledUp"`
}

// NewListTasksHandler returns an HTTP handler listing a user's tasks.
// @Summary List tasks
// @Description Returns the user's tasks in creation order, optionally only those due on date
// @Tags tasks
// @Produce json
// @Param id path int true "User ID"
// @Param date query string false "Due date filter, YYYY-MM-DD"
// @Success 200 {array} models.Task
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /users/{id}/tasks [get]
// @Security BearerAuth
func NewListTasksHandler(svc TaskLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, userID); err != nil {
			writeError(w, err)
			return
		}

		date := r.URL.Query().Get("date")
		if date != "" {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				writeError(w, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrValidation))
				return
			}
		}

		tasks, err := svc.List(r.Context(), userID, date)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

// NewCreateTaskHandler returns an HTTP handler creating a task.
// @Summary Create task
// @Description Adds a pending quest for the user
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param createTaskRequest body handlers.CreateTaskRequest true "New task"
// @Success 201 {object} models.Task
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{id}/tasks [post]
// @Security BearerAuth
func NewCreateTaskHandler(svc TaskCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, userID); err != nil {
			writeError(w, err)
			return
		}

		var req CreateTaskRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		task, err := svc.Create(r.Context(), userID, req.Title, req.XP, req.DueDate)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

// NewUpdateTaskHandler returns an HTTP handler patching a task.
// @Summary Update task
// @Description Merges title and dueDate. completed=true on a pending task awards its XP first.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param updateTaskRequest body handlers.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} handlers.UpdateTaskResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /tasks/{id} [patch]
// @Security BearerAuth
func NewUpdateTaskHandler(svc TaskUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}

		var req UpdateTaskRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		task, err := svc.Get(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, task.UserID); err != nil {
			writeError(w, err)
			return
		}

		updated, completion, err := svc.Update(ctx, id, models.TaskUpdate{
			Title:     req.Title,
			DueDate:   req.DueDate,
			Completed: req.Completed,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		resp := UpdateTaskResponse{Task: updated}
		if completion != nil && completion.User != nil {
			user := newUserResponse(completion.User)
			resp.User = &user
			resp.Awarded = completion.Awarded
			resp.LeveledUp = completion.LeveledUp
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// NewDeleteTaskHandler returns an HTTP handler deleting a task.
// @Summary Delete task
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /tasks/{id} [delete]
// @Security BearerAuth
func NewDeleteTaskHandler(svc TaskDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}

		task, err := svc.Get(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, task.UserID); err != nil {
			writeError(w, err)
			return
		}

		existed, err := svc.Delete(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !existed {
			writeError(w, fmt.Errorf("task %d: %w", id, models.ErrNotFound))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
