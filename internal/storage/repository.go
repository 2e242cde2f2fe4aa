package storage

import (
	"context"

	"github.com/ideaforge/idea-engine/internal/models"
)

// Repository defines the interface for persistence. Reads return
// (nil, nil) when the row does not exist; services translate that into
// their own sentinel errors.
type Repository interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID, username string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error)

	// Completions
	UpsertCompletion(ctx context.Context, cp *models.CompletedProject) error
	GetCompletion(ctx context.Context, id string) (*models.CompletedProject, error)
	DeleteCompletion(ctx context.Context, userID, id string) (bool, error)
	ListCompletions(ctx context.Context, userID string) ([]*models.CompletedProject, error)

	// Achievement unlocks
	ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error)
	InsertUnlocked(ctx context.Context, ua *models.UserAchievement) error
	CountUnlocks(ctx context.Context) (map[string]int, error)

	// Badges
	UpsertBadge(ctx context.Context, b *models.Badge) error
	InsertUserBadge(ctx context.Context, ub *models.UserBadge) error
	ListEarnedBadges(ctx context.Context, userID string) ([]*models.EarnedBadge, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
