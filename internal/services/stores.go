package services

//go:generate mockgen -source=stores.go -destination=stores_mock_test.go -package=services

import (
	"context"

	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/segmentio/kafka-go"
)

// UserReader defines read operations on the user store.
// Absent users are reported as (nil, nil).
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// UserWriter defines write operations on the user store.
type UserWriter interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
}

// TaskReader defines read operations on the task store.
type TaskReader interface {
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	ListByUserAndDate(ctx context.Context, userID int64, date string) ([]models.Task, error)
}

// TaskWriter defines write operations on the task store.
type TaskWriter interface {
	Create(ctx context.Context, userID int64, title string, xp int64, dueDate string) (*models.Task, error)
	Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserCache caches user profiles.
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.User, error) // Returns nil on a miss
	Set(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ProgressRecorder receives XP award observations for metrics.
type ProgressRecorder interface {
	RecordAward(operation string, xp int64, leveledUp bool)
}
