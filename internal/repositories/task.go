package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/questlog/internal/models"
)

const taskColumns = `id, user_id, title, xp, due_date, completed, created_at`

// TaskRepository stores tasks in PostgreSQL.
type TaskRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

// NewTaskRepository creates a repository; txGetter may be nil.
func NewTaskRepository(db *sqlx.DB, txGetter TxGetter) *TaskRepository {
	return &TaskRepository{db: db, txGetter: txGetter}
}

// Create inserts a pending task.
func (r *TaskRepository) Create(ctx context.Context, userID int64, title string, xp int64, dueDate string) (*models.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, xp, due_date, completed, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING ` + taskColumns
	args := []any{userID, title, xp, dueDate}

	ex, _ := executor(ctx, r.db, r.txGetter)

	var task models.Task
	err := sqlx.GetContext(ctx, ex, &task, query, args...)
	logQuery(query, args, task.ID, err)

	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByID returns the task or nil when absent.
// Inside a transaction the row is locked until commit, which serializes
// concurrent completions of the same task.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	ex, inTx := executor(ctx, r.db, r.txGetter)
	if inTx {
		query += ` FOR UPDATE`
	}

	var task models.Task
	err := sqlx.GetContext(ctx, ex, &task, query, id)
	logQuery(query, []any{id}, task.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser returns the user's tasks in creation order.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

// ListByUserAndDate returns the user's tasks due on date.
func (r *TaskRepository) ListByUserAndDate(ctx context.Context, userID int64, date string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND due_date = $2 ORDER BY id`
	return r.list(ctx, query, userID, date)
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	ex, _ := executor(ctx, r.db, r.txGetter)

	tasks := make([]models.Task, 0)
	err := sqlx.SelectContext(ctx, ex, &tasks, query, args...)
	logQuery(query, args, len(tasks), err)

	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update merges the set fields of upd onto the task row.
func (r *TaskRepository) Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    due_date = COALESCE($3, due_date),
		    completed = COALESCE($4, completed)
		WHERE id = $1
		RETURNING ` + taskColumns
	args := []any{id, upd.Title, upd.DueDate, upd.Completed}

	ex, _ := executor(ctx, r.db, r.txGetter)

	var task models.Task
	err := sqlx.GetContext(ctx, ex, &task, query, args...)
	logQuery(query, args, task.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the task and reports whether a row existed.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1`

	ex, _ := executor(ctx, r.db, r.txGetter)

	res, err := ex.ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
