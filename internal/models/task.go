package models

import "time"

// DateLayout is the calendar date format used for task due dates.
const DateLayout = "2006-01-02"

// Task represents a quest owned by a single user.
type Task struct {
	ID        int64     `json:"id" db:"id"`                // Primary key
	UserID    int64     `json:"userId" db:"user_id"`       // Owning user
	Title     string    `json:"title" db:"title"`          // Display title
	XP        int64     `json:"xp" db:"xp"`                // Reward, fixed at creation
	DueDate   string    `json:"dueDate" db:"due_date"`     // Calendar date, YYYY-MM-DD
	Completed bool      `json:"completed" db:"completed"`  // Set once when the quest is done
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // Creation timestamp
}

// TaskUpdate holds the fields that may be merged onto an existing task.
// Owner and reward are intentionally absent.
type TaskUpdate struct {
	Title     *string
	DueDate   *string
	Completed *bool
}

// IsEmpty reports whether the update carries no fields.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.DueDate == nil && u.Completed == nil
}

// Apply merges the set fields onto task in place.
func (u TaskUpdate) Apply(task *Task) {
	if u.Title != nil {
		task.Title = *u.Title
	}
	if u.DueDate != nil {
		task.DueDate = *u.DueDate
	}
	if u.Completed != nil {
		task.Completed = *u.Completed
	}
}
