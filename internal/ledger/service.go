package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideaforge/idea-engine/internal/achievements"
	"github.com/ideaforge/idea-engine/internal/cache"
	"github.com/ideaforge/idea-engine/internal/models"
	"github.com/ideaforge/idea-engine/internal/storage"
)

// Common errors
var (
	ErrNotFound   = errors.New("completion not found")
	ErrValidation = errors.New("validation failed")
)

// Service defines the completion-ledger operations. Every mutation
// triggers an achievement evaluation pass before returning, so callers
// always observe newly unlocked achievements in the result.
type Service interface {
	MarkCompleted(ctx context.Context, userID string, input models.CompletionInput) (*MarkResult, error)
	UnmarkCompleted(ctx context.Context, userID, recordID string) ([]*achievements.Achievement, error)
	ListCompleted(ctx context.Context, userID string) ([]*models.CompletedProject, error)
	AchievementView(ctx context.Context, userID string) (*AchievementView, error)
	EarnedBadges(ctx context.Context, userID string) ([]*models.EarnedBadge, error)
	Ping(ctx context.Context) error
}

// Publisher fans unlock events out to listeners. Publish failures are
// logged, never surfaced: the unlock row is already persisted.
type Publisher interface {
	PublishUnlock(ctx context.Context, ev cache.UnlockEvent) error
}

// MarkResult is returned from MarkCompleted
type MarkResult struct {
	Project      *models.CompletedProject    `json:"project"`
	Achievements []*achievements.Achievement `json:"achievements"`
}

// AchievementState is a definition joined with the user's unlock state
type AchievementState struct {
	*achievements.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementView is the full achievement catalog with per-user state
// plus the derived standing
type AchievementView struct {
	Achievements []*AchievementState   `json:"achievements"`
	Standing     achievements.Standing `json:"standing"`
}

// service implements Service over a repository and the rule engine
type service struct {
	repo      storage.Repository
	engine    *achievements.Engine
	publisher Publisher
	now       func() time.Time
}

// NewService creates a ledger service. publisher may be nil when no
// event fan-out is configured.
func NewService(repo storage.Repository, engine *achievements.Engine, publisher Publisher) Service {
	return &service{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		now:       time.Now,
	}
}

// Ping checks the backing store
func (s *service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// MarkCompleted validates the payload, upserts the completion record
// and runs an evaluation pass. Marking the same project twice replaces
// the snapshot instead of duplicating the record.
func (s *service) MarkCompleted(ctx context.Context, userID string, input models.CompletionInput) (*MarkResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	level, ok := models.ParseLevel(input.Level)
	if !ok {
		return nil, fmt.Errorf("%w: unknown level %q", ErrValidation, input.Level)
	}

	record := &models.CompletedProject{
		ID:           uuid.New().String(),
		UserID:       userID,
		ProjectID:    input.ProjectID,
		Title:        input.Title,
		Level:        level,
		AppType:      input.AppType,
		Technologies: input.Technologies,
		Frameworks:   input.Frameworks,
		Databases:    input.Databases,
		CompletedAt:  s.now().UTC(),
	}

	if err := s.repo.UpsertCompletion(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store completion: %w", err)
	}

	newly, err := s.evaluate(ctx, userID)
	if err != nil {
		// The completion is stored; the next mutation's evaluation
		// pass converges the unlocked set. Fail loudly regardless.
		return nil, fmt.Errorf("completion stored but achievement check failed: %w", err)
	}

	return &MarkResult{Project: record, Achievements: newly}, nil
}

// UnmarkCompleted removes a record owned by the caller and re-runs
// evaluation. Unlocked achievements are permanent: removal can change
// derived progress but never revokes an unlock.
func (s *service) UnmarkCompleted(ctx context.Context, userID, recordID string) ([]*achievements.Achievement, error) {
	deleted, err := s.repo.DeleteCompletion(ctx, userID, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete completion: %w", err)
	}
	if !deleted {
		return nil, ErrNotFound
	}

	newly, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completion removed but achievement check failed: %w", err)
	}

	return newly, nil
}

// ListCompleted returns the user's ledger, newest first
func (s *service) ListCompleted(ctx context.Context, userID string) ([]*models.CompletedProject, error) {
	completions, err := s.repo.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

// AchievementView returns every definition with the user's unlock state
// and derived standing, in catalog order
func (s *service) AchievementView(ctx context.Context, userID string) (*AchievementView, error) {
	rows, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	unlockedAt := make(map[string]time.Time, len(rows))
	unlocked := make(map[string]bool, len(rows))
	for _, ua := range rows {
		unlocked[ua.AchievementID] = true
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	defs := s.engine.Definitions()
	states := make([]*AchievementState, 0, len(defs))
	for _, def := range defs {
		state := &AchievementState{Achievement: def, Unlocked: unlocked[def.ID]}
		if t, ok := unlockedAt[def.ID]; ok {
			ts := t
			state.UnlockedAt = &ts
		}
		states = append(states, state)
	}

	return &AchievementView{
		Achievements: states,
		Standing:     achievements.DeriveStanding(defs, unlocked),
	}, nil
}

// EarnedBadges returns the user's badges joined with metadata
func (s *service) EarnedBadges(ctx context.Context, userID string) ([]*models.EarnedBadge, error) {
	badges, err := s.repo.ListEarnedBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// evaluate runs the rule engine over the user's current ledger and
// persists any new unlocks and badge grants in the same pass
func (s *service) evaluate(ctx context.Context, userID string) ([]*achievements.Achievement, error) {
	completions, err := s.repo.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	rows, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	unlocked := make(map[string]bool, len(rows))
	for _, ua := range rows {
		unlocked[ua.AchievementID] = true
	}

	newly := s.engine.Evaluate(completions, unlocked)
	if len(newly) == 0 {
		return nil, nil
	}

	now := s.now().UTC()
	for _, def := range newly {
		if err := s.repo.InsertUnlocked(ctx, &models.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    now,
		}); err != nil {
			return nil, fmt.Errorf("failed to persist unlock %s: %w", def.ID, err)
		}

		if def.BadgeID != "" {
			if err := s.repo.InsertUserBadge(ctx, &models.UserBadge{
				UserID:   userID,
				BadgeID:  def.BadgeID,
				EarnedAt: now,
			}); err != nil {
				return nil, fmt.Errorf("failed to grant badge %s: %w", def.BadgeID, err)
			}
		}

		s.publish(ctx, userID, def, now)
	}

	slog.Info("achievements unlocked",
		"user_id", userID,
		"count", len(newly),
	)

	return newly, nil
}

func (s *service) publish(ctx context.Context, userID string, def *achievements.Achievement, at time.Time) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishUnlock(ctx, cache.UnlockEvent{
		UserID:        userID,
		AchievementID: def.ID,
		Title:         def.Title,
		Icon:          def.Icon,
		BadgeID:       def.BadgeID,
		UnlockedAt:    at,
	})
	if err != nil {
		slog.Warn("failed to publish unlock event", "achievement", def.ID, "error", err)
	}
}

// validateInput checks the required completion fields
func validateInput(input models.CompletionInput) error {
	var missing []string
	if input.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Level == "" {
		missing = append(missing, "level")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
