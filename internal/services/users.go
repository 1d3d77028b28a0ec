package services

import (
	"context"
	"fmt"

	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
)

// UserService reads and patches user profiles.
type UserService struct {
	reader UserReader
	writer UserWriter
	cache  UserCache
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(reader UserReader, writer UserWriter, cache UserCache) *UserService {
	return &UserService{reader: reader, writer: writer, cache: cache}
}

// Get returns the user, serving from cache when possible.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Log.Warnw("user cache read failed", "userID", id, "error", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "userID", id, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			logger.Log.Warnw("user cache write failed", "userID", id, "error", err)
		}
	}
	return user, nil
}

// Update merges upd onto the user. Field values are not range-checked.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.writer.Update(ctx, id, upd)
	if err != nil {
		logger.Log.Errorw("failed to update user", "userID", id, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	evictUser(ctx, s.cache, id)
	return user, nil
}
