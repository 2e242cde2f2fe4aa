package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ideaforge/idea-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Profiles ---

// GetProfile retrieves a profile by user id
func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, username, full_name, avatar_url, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p models.Profile
	var fullName, avatarURL sql.NullString

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&fullName,
		&avatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return &p, nil
}

// EnsureProfile returns the user's profile, creating a minimal row on
// first access
func (r *PostgresRepository) EnsureProfile(ctx context.Context, userID, username string) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, username, full_name, avatar_url, created_at, updated_at
	`

	var p models.Profile
	var fullName, avatarURL sql.NullString

	err := r.pool.QueryRow(ctx, query, userID, username).Scan(
		&p.UserID,
		&p.Username,
		&fullName,
		&avatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return &p, nil
}

// UpdateProfile applies the non-nil fields of upd and returns the
// updated row, or (nil, nil) if the profile does not exist
func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{userID}
	argNum := 2

	if upd.Username != nil {
		sets = append(sets, fmt.Sprintf("username = $%d", argNum))
		args = append(args, *upd.Username)
		argNum++
	}
	if upd.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", argNum))
		args = append(args, *upd.FullName)
		argNum++
	}
	if upd.AvatarURL != nil {
		sets = append(sets, fmt.Sprintf("avatar_url = $%d", argNum))
		args = append(args, *upd.AvatarURL)
		argNum++
	}

	query := fmt.Sprintf(`
		UPDATE profiles
		SET %s
		WHERE user_id = $1
		RETURNING user_id, username, full_name, avatar_url, created_at, updated_at
	`, strings.Join(sets, ", "))

	var p models.Profile
	var fullName, avatarURL sql.NullString

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.UserID,
		&p.Username,
		&fullName,
		&avatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return &p, nil
}

// --- Completions ---

// UpsertCompletion inserts a completion record. Marking the same
// project twice replaces the snapshot and timestamp instead of
// duplicating the row.
func (r *PostgresRepository) UpsertCompletion(ctx context.Context, cp *models.CompletedProject) error {
	query := `
		INSERT INTO completed_projects (id, user_id, project_id, title, level, app_type, technologies, frameworks, databases, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, project_id) DO UPDATE
		SET title = EXCLUDED.title,
		    level = EXCLUDED.level,
		    app_type = EXCLUDED.app_type,
		    technologies = EXCLUDED.technologies,
		    frameworks = EXCLUDED.frameworks,
		    databases = EXCLUDED.databases,
		    completed_at = EXCLUDED.completed_at
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		cp.ID,
		cp.UserID,
		cp.ProjectID,
		cp.Title,
		string(cp.Level),
		nullString(cp.AppType),
		cp.Technologies,
		cp.Frameworks,
		cp.Databases,
		cp.CompletedAt,
	).Scan(&cp.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}

	return nil
}

// GetCompletion retrieves a completion record by id
func (r *PostgresRepository) GetCompletion(ctx context.Context, id string) (*models.CompletedProject, error) {
	query := `
		SELECT id, user_id, project_id, title, level, app_type, technologies, frameworks, databases, completed_at
		FROM completed_projects
		WHERE id = $1
	`

	cp, err := scanCompletion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	return cp, nil
}

// DeleteCompletion deletes a record owned by the user, reporting
// whether a row was removed
func (r *PostgresRepository) DeleteCompletion(ctx context.Context, userID, id string) (bool, error) {
	query := `DELETE FROM completed_projects WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete completion: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListCompletions returns a user's records ordered by completion time
// descending
func (r *PostgresRepository) ListCompletions(ctx context.Context, userID string) ([]*models.CompletedProject, error) {
	query := `
		SELECT id, user_id, project_id, title, level, app_type, technologies, frameworks, databases, completed_at
		FROM completed_projects
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []*models.CompletedProject
	for rows.Next() {
		cp, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return completions, nil
}

// scanner abstracts pgx.Row and pgx.Rows for shared scanning
type scanner interface {
	Scan(dest ...any) error
}

func scanCompletion(row scanner) (*models.CompletedProject, error) {
	var cp models.CompletedProject
	var levelStr string
	var appType sql.NullString

	err := row.Scan(
		&cp.ID,
		&cp.UserID,
		&cp.ProjectID,
		&cp.Title,
		&levelStr,
		&appType,
		&cp.Technologies,
		&cp.Frameworks,
		&cp.Databases,
		&cp.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	cp.Level = models.Level(levelStr)
	cp.AppType = appType.String
	return &cp, nil
}

// --- Achievement unlocks ---

// ListUnlocked returns the user's unlocked achievements
func (r *PostgresRepository) ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	query := `
		SELECT user_id, achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []*models.UserAchievement
	for rows.Next() {
		var ua models.UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		unlocked = append(unlocked, &ua)
	}

	return unlocked, rows.Err()
}

// InsertUnlocked records an unlock. Unlocks are permanent; re-inserting
// an existing pair is a no-op.
func (r *PostgresRepository) InsertUnlocked(ctx context.Context, ua *models.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, ua.UserID, ua.AchievementID, ua.UnlockedAt)
	if err != nil {
		return fmt.Errorf("failed to insert unlock: %w", err)
	}

	return nil
}

// CountUnlocks returns global unlock counts keyed by achievement id
func (r *PostgresRepository) CountUnlocks(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT achievement_id, COUNT(*)
		FROM user_achievements
		GROUP BY achievement_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count unlocks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan unlock count: %w", err)
		}
		counts[id] = n
	}

	return counts, rows.Err()
}

// --- Badges ---

// UpsertBadge inserts or refreshes badge metadata
func (r *PostgresRepository) UpsertBadge(ctx context.Context, b *models.Badge) error {
	query := `
		INSERT INTO badges (id, name, description, icon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, icon = EXCLUDED.icon
	`

	_, err := r.pool.Exec(ctx, query, b.ID, b.Name, b.Description, nullString(b.Icon))
	if err != nil {
		return fmt.Errorf("failed to upsert badge: %w", err)
	}

	return nil
}

// InsertUserBadge records a badge grant; granting twice is a no-op
func (r *PostgresRepository) InsertUserBadge(ctx context.Context, ub *models.UserBadge) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, ub.UserID, ub.BadgeID, ub.EarnedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user badge: %w", err)
	}

	return nil
}

// ListEarnedBadges returns the user's badges joined with metadata,
// newest first
func (r *PostgresRepository) ListEarnedBadges(ctx context.Context, userID string) ([]*models.EarnedBadge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon, ub.earned_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.EarnedBadge
	for rows.Next() {
		var eb models.EarnedBadge
		var icon sql.NullString
		if err := rows.Scan(&eb.ID, &eb.Name, &eb.Description, &icon, &eb.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		eb.Icon = icon.String
		badges = append(badges, &eb)
	}

	return badges, rows.Err()
}

// nullString converts empty strings to SQL NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
