package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ideaforge/idea-engine/internal/achievements"
	"github.com/ideaforge/idea-engine/internal/auth"
)

// seedctl is an operator tool: it seeds the badge table and can mint
// development tokens for testing against a running server.
func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("DATABASE_DSN"), "postgres DSN")
	issueToken := flag.Bool("issue-token", false, "mint a development token instead of seeding")
	userID := flag.String("user", "", "user id for -issue-token")
	username := flag.String("username", "", "username for -issue-token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime for -issue-token")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *issueToken {
		if err := runIssueToken(*userID, *username, *ttl); err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runSeed(*dsn); err != nil {
		slog.Error("failed to seed badges", "error", err)
		os.Exit(1)
	}
}

func runSeed(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("no DSN given (use -dsn or DATABASE_DSN)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	for _, badge := range achievements.Badges {
		_, err := db.ExecContext(ctx, `
			INSERT INTO badges (id, name, description, icon)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				icon = EXCLUDED.icon
		`, badge.ID, badge.Name, badge.Description, badge.Icon)
		if err != nil {
			return fmt.Errorf("failed to upsert badge %s: %w", badge.ID, err)
		}
		slog.Info("badge seeded", "badge_id", badge.ID)
	}

	slog.Info("seeding complete", "badges", len(achievements.Badges))
	return nil
}

func runIssueToken(userID, username string, ttl time.Duration) error {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return fmt.Errorf("AUTH_SECRET is not set")
	}
	if userID == "" {
		return fmt.Errorf("-user is required")
	}
	if username == "" {
		username = userID
	}

	token, err := auth.NewVerifier(secret).Sign(userID, username, ttl)
	if err != nil {
		return err
	}

	// Token goes to stdout so it can be piped; logs go to stderr
	fmt.Println(token)
	return nil
}
