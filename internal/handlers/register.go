package handlers

//go:generate mockgen -source=register.go -destination=register_mock_test.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/questlog/internal/models"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: Ash
	Username string `json:"username" validate:"required,min=3,max=32"`

	// Password
	// required: true
	// default: password123
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new account at level 1 with no XP. Usernames are unique and case-sensitive.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.UserResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Username already exists"
// @Router /users [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newUserResponse(user))
	}
}
