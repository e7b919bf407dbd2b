package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"policygen/internal/domain/auth"
	"policygen/internal/domain/billing"
	"policygen/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminEmail) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, name, password_hash, is_admin, status)
    VALUES ($1, $2, $3, true, 'active')
    RETURNING id
  `, email, "Administrator", hash).Scan(&id)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO subscriptions (user_id, plan, status)
    VALUES ($1, $2, $3)
    ON CONFLICT (user_id) DO NOTHING
  `, id, billing.PlanPremium, billing.StatusActive)
	return err
}
