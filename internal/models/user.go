package models

import "time"

// User represents a player account with its progression state.
type User struct {
	ID           int64     `json:"id" db:"id"`                  // Primary key
	Username     string    `json:"username" db:"username"`      // Unique, case-sensitive username
	PasswordHash string    `json:"-" db:"password_hash"`        // Bcrypt hash, never serialized
	XP           int64     `json:"xp" db:"xp"`                  // Cumulative lifetime XP
	Level        int64     `json:"level" db:"level"`            // Current level, starts at 1
	Streak       int64     `json:"streak" db:"streak"`          // Consecutive active days
	LastActive   time.Time `json:"lastActive" db:"last_active"` // Last login or streak-relevant action
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`   // Creation timestamp
}

// UserUpdate holds the fields that may be merged onto an existing user.
// Nil fields are left untouched.
type UserUpdate struct {
	XP         *int64
	Level      *int64
	Streak     *int64
	LastActive *time.Time
}

// IsEmpty reports whether the update carries no fields.
func (u UserUpdate) IsEmpty() bool {
	return u.XP == nil && u.Level == nil && u.Streak == nil && u.LastActive == nil
}

// Apply merges the set fields onto user in place.
func (u UserUpdate) Apply(user *User) {
	if u.XP != nil {
		user.XP = *u.XP
	}
	if u.Level != nil {
		user.Level = *u.Level
	}
	if u.Streak != nil {
		user.Streak = *u.Streak
	}
	if u.LastActive != nil {
		user.LastActive = *u.LastActive
	}
}
