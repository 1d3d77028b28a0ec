package services

//go:generate mockgen -source=auth.go -destination=auth_mock_test.go -package=services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/progression"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the username or password does not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID int64) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
	cache  UserCache
	now    func() time.Time
}

// NewAuthService creates a new AuthService instance. cache may be nil.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, cache UserCache) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
		cache:  cache,
		now:    time.Now,
	}
}

// Register creates a new user with a hashed password.
func (svc *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Create(ctx, username, string(hashedPassword))
	if errors.Is(err, models.ErrDuplicateUsername) {
		logger.Log.Warnw("user already exists", "username", username)
		return nil, err
	}
	if err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	logger.Log.Infow("user registered", "userID", user.ID, "username", username)
	return user, nil
}

// Login authenticates a user, advances the daily streak and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warnw("user does not exist", "username", username)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warnw("invalid credentials", "username", username)
		return nil, "", ErrInvalidCredentials
	}

	user, err = svc.touchStreak(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return nil, "", err
	}

	return user, token, nil
}

// touchStreak applies the streak policy once per calendar day.
func (svc *AuthService) touchStreak(ctx context.Context, user *models.User) (*models.User, error) {
	now := svc.now()
	upd := progression.ComputeStreakUpdate(user.LastActive, now, user.Streak)
	if !upd.ShouldUpdate {
		return user, nil
	}

	updated, err := svc.writer.Update(ctx, user.ID, models.UserUpdate{
		Streak:     &upd.NewStreak,
		LastActive: &now,
	})
	if err != nil {
		logger.Log.Errorw("failed to update streak", "userID", user.ID, "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, models.ErrNotFound)
	}
	evictUser(ctx, svc.cache, user.ID)

	logger.Log.Infow("streak updated", "userID", user.ID, "from", user.Streak, "to", updated.Streak)
	return updated, nil
}
