package models

// Progress event operations.
const (
	OperationTaskCompleted = "task_completed"
	OperationFocusSession  = "focus_session"
	OperationLevelUp       = "level_up"
)

// ProgressEvent describes an XP award published to the event stream.
type ProgressEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix time (seconds) of the award.
	UserID    int64  `json:"user_id"`   // UserID is the user who received the XP.
	TaskID    int64  `json:"task_id"`   // TaskID is the completed task, zero for focus sessions.
	XP        int64  `json:"xp"`        // XP is the awarded delta.
	TotalXP   int64  `json:"total_xp"`  // TotalXP is the user's XP after the award.
	Level     int64  `json:"level"`     // Level is the user's level after the award.
	Operation string `json:"operation"` // Operation is one of the Operation* constants.
}
