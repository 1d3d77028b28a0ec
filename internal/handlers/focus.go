package handlers

//go:generate mockgen -source=focus.go -destination=focus_mock_test.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/questlog/internal/models"
)

// FocusAwarder credits XP for a finished focus session.
type FocusAwarder interface {
	AwardFocusXP(ctx context.Context, userID, xp int64) (*models.User, bool, error)
}

// FocusRequest reports a finished focus session
// swagger:model FocusRequest
type FocusRequest struct {
	// XP earned by the session, computed by the client
	// default: 50
	XP int64 `json:"xp" validate:"gte=0"`
}

// FocusResponse is the user after the award
// swagger:model FocusResponse
type FocusResponse struct {
	User      UserResponse `json:"user"`
	LeveledUp bool         `json:"leveledUp"`
}

// NewFocusHandler returns an HTTP handler that credits focus session XP.
// @Summary Complete focus session
// @Description Adds the session XP to the user and applies the leveling rule
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param focusRequest body handlers.FocusRequest true "Session result"
// @Success 200 {object} handlers.FocusResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{id}/focus [post]
// @Security BearerAuth
func NewFocusHandler(svc FocusAwarder) http.HandlerFunc {
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

		var req FocusRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		user, leveledUp, err := svc.AwardFocusXP(r.Context(), id, req.XP)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, FocusResponse{User: newUserResponse(user), LeveledUp: leveledUp})
	}
}
