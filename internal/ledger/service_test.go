package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/idea-engine/internal/achievements"
	"github.com/ideaforge/idea-engine/internal/cache"
	"github.com/ideaforge/idea-engine/internal/models"
)

// fakeRepo is an in-memory Repository for service tests
type fakeRepo struct {
	mu          sync.Mutex
	completions map[string]*models.CompletedProject // by record id
	unlocked    []*models.UserAchievement
	userBadges  []*models.UserBadge
	badges      map[string]*models.Badge

	failUpsert   error
	failUnlocked error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		completions: make(map[string]*models.CompletedProject),
		badges:      make(map[string]*models.Badge),
	}
}

func (f *fakeRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeRepo) EnsureProfile(ctx context.Context, userID, username string) (*models.Profile, error) {
	return &models.Profile{UserID: userID, Username: username}, nil
}

func (f *fakeRepo) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeRepo) UpsertCompletion(ctx context.Context, cp *models.CompletedProject) error {
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.completions {
		if existing.UserID == cp.UserID && existing.ProjectID == cp.ProjectID {
			cp.ID = existing.ID
			f.completions[id] = cp
			return nil
		}
	}
	f.completions[cp.ID] = cp
	return nil
}

func (f *fakeRepo) GetCompletion(ctx context.Context, id string) (*models.CompletedProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completions[id], nil
}

func (f *fakeRepo) DeleteCompletion(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.completions[id]
	if !ok || cp.UserID != userID {
		return false, nil
	}
	delete(f.completions, id)
	return true, nil
}

func (f *fakeRepo) ListCompletions(ctx context.Context, userID string) ([]*models.CompletedProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CompletedProject
	for _, cp := range f.completions {
		if cp.UserID == userID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	if f.failUnlocked != nil {
		return nil, f.failUnlocked
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.UserAchievement
	for _, ua := range f.unlocked {
		if ua.UserID == userID {
			out = append(out, ua)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertUnlocked(ctx context.Context, ua *models.UserAchievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.unlocked {
		if existing.UserID == ua.UserID && existing.AchievementID == ua.AchievementID {
			return nil
		}
	}
	f.unlocked = append(f.unlocked, ua)
	return nil
}

func (f *fakeRepo) CountUnlocks(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, ua := range f.unlocked {
		counts[ua.AchievementID]++
	}
	return counts, nil
}

func (f *fakeRepo) UpsertBadge(ctx context.Context, b *models.Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badges[b.ID] = b
	return nil
}

func (f *fakeRepo) InsertUserBadge(ctx context.Context, ub *models.UserBadge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.userBadges {
		if existing.UserID == ub.UserID && existing.BadgeID == ub.BadgeID {
			return nil
		}
	}
	f.userBadges = append(f.userBadges, ub)
	return nil
}

func (f *fakeRepo) ListEarnedBadges(ctx context.Context, userID string) ([]*models.EarnedBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.EarnedBadge
	for _, ub := range f.userBadges {
		if ub.UserID != userID {
			continue
		}
		eb := &models.EarnedBadge{EarnedAt: ub.EarnedAt}
		if b, ok := f.badges[ub.BadgeID]; ok {
			eb.Badge = *b
		} else {
			eb.ID = ub.BadgeID
		}
		out = append(out, eb)
	}
	return out, nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// recordingPublisher captures published unlock events
type recordingPublisher struct {
	mu     sync.Mutex
	events []cache.UnlockEvent
	err    error
}

func (p *recordingPublisher) PublishUnlock(ctx context.Context, ev cache.UnlockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func testDefs() []*achievements.Achievement {
	return []*achievements.Achievement{
		{ID: "first", Title: "Primer Proyecto", Level: models.LevelStudent,
			Condition: achievements.MinProjects{Count: 1}},
		{ID: "third", Title: "Tercer Proyecto", Level: models.LevelStudent, BadgeID: "starter",
			Condition: achievements.MinProjects{Count: 3}},
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub Publisher) Service {
	t.Helper()
	engine, err := achievements.NewEngine(testDefs(), time.UTC)
	require.NoError(t, err)
	return NewService(repo, engine, pub)
}

func input(projectID string) models.CompletionInput {
	return models.CompletionInput{
		ProjectID:    projectID,
		Title:        "Proyecto " + projectID,
		Level:        "Student",
		Technologies: []string{"Go"},
	}
}

func TestMarkCompletedStoresAndUnlocks(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := newTestService(t, repo, pub)
	ctx := context.Background()

	result, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)
	require.NotNil(t, result.Project)
	assert.NotEmpty(t, result.Project.ID)
	assert.Equal(t, "u1", result.Project.UserID)
	assert.Equal(t, models.LevelStudent, result.Project.Level)

	require.Len(t, result.Achievements, 1)
	assert.Equal(t, "first", result.Achievements[0].ID)

	// The unlock was persisted and published
	unlocked, err := repo.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "first", pub.events[0].AchievementID)
}

func TestMarkCompletedValidation(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), nil)
	ctx := context.Background()

	_, err := svc.MarkCompleted(ctx, "u1", models.CompletionInput{Title: "X", Level: "Student"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "project_id")

	_, err = svc.MarkCompleted(ctx, "u1", models.CompletionInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_id")
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "level")

	_, err = svc.MarkCompleted(ctx, "u1", models.CompletionInput{
		ProjectID: "p1", Title: "X", Level: "Wizard",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkCompletedIdempotentPerProject(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)

	again, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)

	// Same project marked twice keeps a single record and reports no
	// new unlocks the second time
	assert.Equal(t, first.Project.ID, again.Project.ID)
	assert.Empty(t, again.Achievements)

	ledger, err := svc.ListCompleted(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestMarkCompletedGrantsBadges(t *testing.T) {
	repo := newFakeRepo()
	repo.badges["starter"] = &models.Badge{ID: "starter", Name: "Estrella"}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	for _, p := range []string{"p1", "p2", "p3"} {
		_, err := svc.MarkCompleted(ctx, "u1", input(p))
		require.NoError(t, err)
	}

	badges, err := svc.EarnedBadges(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "starter", badges[0].ID)
	assert.Equal(t, "Estrella", badges[0].Name)
}

func TestUnmarkCompletedNotFound(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), nil)

	_, err := svc.UnmarkCompleted(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnmarkCompletedOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)

	// Another user cannot delete u1's record
	_, err = svc.UnmarkCompleted(ctx, "u2", result.Project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UnmarkCompleted(ctx, "u1", result.Project.ID)
	require.NoError(t, err)
}

func TestUnlocksArePermanentAfterUnmark(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)
	require.Len(t, result.Achievements, 1)

	_, err = svc.UnmarkCompleted(ctx, "u1", result.Project.ID)
	require.NoError(t, err)

	view, err := svc.AchievementView(ctx, "u1")
	require.NoError(t, err)

	var first *AchievementState
	for _, st := range view.Achievements {
		if st.ID == "first" {
			first = st
		}
	}
	require.NotNil(t, first)
	assert.True(t, first.Unlocked, "unlocks survive ledger removal")
	assert.NotNil(t, first.UnlockedAt)
}

func TestMarkCompletedPartialFailureIsLoud(t *testing.T) {
	repo := newFakeRepo()
	repo.failUnlocked = errors.New("boom")
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion stored but achievement check failed")

	// The completion itself was stored before the failure
	repo.failUnlocked = nil
	ledger, err := svc.ListCompleted(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestPublishFailureDoesNotFailMark(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := newTestService(t, repo, pub)

	result, err := svc.MarkCompleted(context.Background(), "u1", input("p1"))
	require.NoError(t, err)
	assert.Len(t, result.Achievements, 1)
}

func TestAchievementViewCatalogOrderAndStanding(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.MarkCompleted(ctx, "u1", input("p1"))
	require.NoError(t, err)

	view, err := svc.AchievementView(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, view.Achievements, 2)
	assert.Equal(t, "first", view.Achievements[0].ID)
	assert.Equal(t, "third", view.Achievements[1].ID)
	assert.True(t, view.Achievements[0].Unlocked)
	assert.False(t, view.Achievements[1].Unlocked)

	assert.Equal(t, models.LevelStudent, view.Standing.Level)
	assert.InDelta(t, 0.5, view.Standing.Fraction, 1e-9)
	assert.InDelta(t, 12.5, view.Standing.Percent, 1e-9)
}
