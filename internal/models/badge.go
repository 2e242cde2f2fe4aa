package models

import "time"

// Badge is a rarer reward attached to a subset of achievements
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// UserBadge records that a user earned a badge
type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// EarnedBadge is a user's badge grant joined with badge metadata
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earned_at"`
}

// UserAchievement records that a user unlocked an achievement
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
