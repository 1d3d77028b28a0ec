package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/questlog/internal/models"
)

const uniqueViolation = "23505"

const userColumns = `id, username, password_hash, xp, level, streak, last_active, created_at`

// UserRepository stores users in PostgreSQL.
type UserRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

// NewUserRepository creates a repository; txGetter may be nil.
func NewUserRepository(db *sqlx.DB, txGetter TxGetter) *UserRepository {
	return &UserRepository{db: db, txGetter: txGetter}
}

// Create inserts a new user. The UNIQUE constraint on username guards duplicates.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, xp, level, streak, last_active, created_at)
		VALUES ($1, $2, 0, 1, 0, NOW(), NOW())
		RETURNING ` + userColumns
	args := []any{username}

	ex, _ := executor(ctx, r.db, r.txGetter)

	var user models.User
	err := sqlx.GetContext(ctx, ex, &user, query, username, passwordHash)
	logQuery(query, args, user.ID, err)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, models.ErrDuplicateUsername
		}
		return nil, err
	}
	return &user, nil
}

// GetByID returns the user or nil when absent.
// Inside a transaction the row is locked so XP read-modify-write cycles
// from concurrent requests do not lose updates.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id, true)
}

// GetByUsername returns the user or nil when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username, false)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any, lock bool) (*models.User, error) {
	ex, inTx := executor(ctx, r.db, r.txGetter)
	if inTx && lock {
		query += ` FOR UPDATE`
	}

	var user models.User
	err := sqlx.GetContext(ctx, ex, &user, query, arg)
	logQuery(query, []any{arg}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update merges the set fields of upd onto the user row.
func (r *UserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET xp = COALESCE($2, xp),
		    level = COALESCE($3, level),
		    streak = COALESCE($4, streak),
		    last_active = COALESCE($5, last_active)
		WHERE id = $1
		RETURNING ` + userColumns
	args := []any{id, upd.XP, upd.Level, upd.Streak, upd.LastActive}

	ex, _ := executor(ctx, r.db, r.txGetter)

	var user models.User
	err := sqlx.GetContext(ctx, ex, &user, query, args...)
	logQuery(query, args, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
