package handlers

//go:generate mockgen -source=users.go -destination=users_mock_test.go -package=handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/progression"
)

// UserGetter loads a user profile.
type UserGetter interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

// UserUpdater patches a user profile.
type UserUpdater interface {
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
}

// UserResponse is a user profile with its display progress
// swagger:model UserResponse
type UserResponse struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	XP             int64     `json:"xp"`
	Level          int64     `json:"level"`
	Streak         int64     `json:"streak"`
	LastActive     time.Time `json:"lastActive"`
	CreatedAt      time.Time `json:"createdAt"`
	XPForNextLevel int64     `json:"xpForNextLevel"`
	XPPercentage   int64     `json:"xpPercentage"`
	Rank           string    `json:"rank"`
}

func newUserResponse(u *models.User) UserResponse {
	p := progression.Progress(u.XP, u.Level)
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		XP:             u.XP,
		Level:          u.Level,
		Streak:         u.Streak,
		LastActive:     u.LastActive,
		CreatedAt:      u.CreatedAt,
		XPForNextLevel: p.XPForNextLevel,
		XPPercentage:   p.Percentage,
		Rank:           progression.RankTitle(u.Level),
	}
}

// UpdateUserRequest is a partial user update. Omitted fields are kept.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	XP     *int64 `json:"xp,omitempty" validate:"omitempty,gte=0"`
	Level  *int64 `json:"level,omitempty" validate:"omitempty,gte=1"`
	Streak *int64 `json:"streak,omitempty" validate:"omitempty,gte=0"`
}

// NewGetUserHandler returns an HTTP handler that serves a user profile.
// @Summary Get user
// @Description Returns the profile with XP progress and rank. The password is never included.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} handlers.UserResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{id} [get]
// @Security BearerAuth
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, id); err != nil {
			writeError(w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}

// NewUpdateUserHandler returns an HTTP handler that patches xp, level or streak.
// @Summary Update user
// @Description Merges the given fields onto the user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param updateUserRequest body handlers.UpdateUserRequest true "Fields to change"
// @Success 200 {object} handlers.UserResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{id} [patch]
// @Security BearerAuth
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := authorizeOwner(r, id); err != nil {
			writeError(w, err)
			return
		}

		var req UpdateUserRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, models.UserUpdate{
			XP:     req.XP,
			Level:  req.Level,
			Streak: req.Streak,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}
