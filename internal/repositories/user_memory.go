package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/sbilibin2017/questlog/internal/models"
)

// UserMemoryRepository keeps users in process memory.
type UserMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	byName map[string]int64
	nextID int64
	now    func() time.Time
}

// NewUserMemoryRepository creates an empty in-memory user store.
func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{
		users:  make(map[int64]models.User),
		byName: make(map[string]int64),
		nextID: 1,
		now:    time.Now,
	}
}

// Create stores a new user with starting progression values.
// The username check and insert happen under one lock.
func (r *UserMemoryRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[username]; ok {
		return nil, models.ErrDuplicateUsername
	}

	now := r.now()
	user := models.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		XP:           0,
		Level:        1,
		Streak:       0,
		LastActive:   now,
		CreatedAt:    now,
	}
	r.nextID++
	r.users[user.ID] = user
	r.byName[username] = user.ID

	return &user, nil
}

// GetByID returns the user or nil when absent.
func (r *UserMemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetByUsername returns the user or nil when absent.
func (r *UserMemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	user := r.users[id]
	return &user, nil
}

// Update merges upd onto the stored user. Values are not validated.
func (r *UserMemoryRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	upd.Apply(&user)
	r.users[id] = user
	return &user, nil
}
