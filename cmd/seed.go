package main

import (
	"context"
	"time"

	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/services"
)

const (
	demoUsername = "Ash"
	demoPassword = "password123"
)

var demoTasks = []struct {
	title string
	xp    int64
}{
	{"Read docs", 20},
	{"Setup Firebase", 30},
	{"Build home screen", 50},
}

// seedDemo creates the demo account with three quests due today.
// It does nothing when the account already exists.
func seedDemo(ctx context.Context, st stores, auth *services.AuthService, now time.Time) error {
	existing, err := st.users.GetByUsername(ctx, demoUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Log.Infow("demo user already present, skipping seed", "userID", existing.ID)
		return nil
	}

	user, err := auth.Register(ctx, demoUsername, demoPassword)
	if err != nil {
		return err
	}

	today := now.Format(models.DateLayout)
	for _, t := range demoTasks {
		if _, err := st.tasks.Create(ctx, user.ID, t.title, t.xp, today); err != nil {
			return err
		}
	}

	xp, level, streak := int64(120), int64(2), int64(3)
	if _, err := st.users.Update(ctx, user.ID, models.UserUpdate{XP: &xp, Level: &level, Streak: &streak}); err != nil {
		return err
	}

	logger.Log.Infow("demo user seeded", "userID", user.ID, "username", demoUsername, "tasks", len(demoTasks))
	return nil
}
