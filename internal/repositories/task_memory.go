package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/sbilibin2017/questlog/internal/models"
)

// TaskMemoryRepository keeps tasks in process memory, preserving creation order.
type TaskMemoryRepository struct {
	mu     sync.RWMutex
	tasks  map[int64]models.Task
	order  []int64
	nextID int64
	now    func() time.Time
}

// NewTaskMemoryRepository creates an empty in-memory task store.
func NewTaskMemoryRepository() *TaskMemoryRepository {
	return &TaskMemoryRepository{
		tasks:  make(map[int64]models.Task),
		nextID: 1,
		now:    time.Now,
	}
}

// Create stores a new pending task.
func (r *TaskMemoryRepository) Create(ctx context.Context, userID int64, title string, xp int64, dueDate string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := models.Task{
		ID:        r.nextID,
		UserID:    userID,
		Title:     title,
		XP:        xp,
		DueDate:   dueDate,
		Completed: false,
		CreatedAt: r.now(),
	}
	r.nextID++
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)

	return &task, nil
}

// GetByID returns the task or nil when absent.
func (r *TaskMemoryRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListByUser returns the user's tasks in creation order.
func (r *TaskMemoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool {
		return t.UserID == userID
	}), nil
}

// ListByUserAndDate returns the user's tasks whose due date equals date exactly.
func (r *TaskMemoryRepository) ListByUserAndDate(ctx context.Context, userID int64, date string) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool {
		return t.UserID == userID && t.DueDate == date
	}), nil
}

func (r *TaskMemoryRepository) filter(keep func(models.Task) bool) []models.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]models.Task, 0)
	for _, id := range r.order {
		if t := r.tasks[id]; keep(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Update merges upd onto the stored task.
func (r *TaskMemoryRepository) Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	upd.Apply(&task)
	r.tasks[id] = task
	return &task, nil
}

// Delete removes the task and reports whether it existed.
func (r *TaskMemoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}
