package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/segmentio/kafka-go"
)

// publishEvents writes progress events to Kafka, keyed by user id.
// Failures are logged and never surface to the caller.
func publishEvents(ctx context.Context, w KafkaWriter, events ...models.ProgressEvent) {
	if w == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "events", len(events))
		return
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Log.Errorw("Failed to marshal progress event", "event_id", ev.EventID, "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
			Value: data,
		})
	}
	if len(msgs) == 0 {
		return
	}

	if err := w.WriteMessages(ctx, msgs...); err != nil {
		logger.Log.Errorw("Failed to publish progress events", "count", len(msgs), "error", err)
		return
	}
	logger.Log.Infow("Progress events published", "count", len(msgs))
}

// awardEvents builds the events for one XP award.
func awardEvents(operation string, taskID int64, delta int64, user *models.User, leveledUp bool, at time.Time) []models.ProgressEvent {
	base := models.ProgressEvent{
		Timestamp: at.Unix(),
		UserID:    user.ID,
		TaskID:    taskID,
		XP:        delta,
		TotalXP:   user.XP,
		Level:     user.Level,
	}

	award := base
	award.EventID = uuid.NewString()
	award.Operation = operation
	events := []models.ProgressEvent{award}

	if leveledUp {
		lvl := base
		lvl.EventID = uuid.NewString()
		lvl.Operation = models.OperationLevelUp
		events = append(events, lvl)
	}
	return events
}
