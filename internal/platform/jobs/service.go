package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"policygen/internal/domain/billing"
	"policygen/internal/platform/config"
)

const (
	JobSessionPurge      = "session_purge"
	JobSubscriptionSweep = "subscription_sweep"
)

type Service struct {
	DB    *pgxpool.Pool
	Cfg   config.Config
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		queue: make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.SessionPurgeInterval > 0 {
		go s.schedule(ctx, s.Cfg.SessionPurgeInterval, JobSessionPurge, s.purgeSessions)
	}
	if s.Cfg.SubscriptionSweepInterval > 0 {
		go s.schedule(ctx, s.Cfg.SubscriptionSweepInterval, JobSubscriptionSweep, s.sweepSubscriptions)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) purgeSessions(ctx context.Context) (any, error) {
	sessions, err := s.DB.Exec(ctx, "DELETE FROM sessions WHERE expires_at < now() OR revoked_at IS NOT NULL")
	if err != nil {
		return nil, err
	}
	resets, err := s.DB.Exec(ctx, "DELETE FROM password_resets WHERE expires_at < now() OR used_at IS NOT NULL")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"sessionsDeleted": sessions.RowsAffected(),
		"resetsDeleted":   resets.RowsAffected(),
	}, nil
}

func (s *Service) sweepSubscriptions(ctx context.Context) (any, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE subscriptions
    SET status = $1, updated_at = now()
    WHERE plan = $2 AND status = $3 AND current_period_end IS NOT NULL AND current_period_end < now()
  `, billing.StatusPastDue, billing.PlanPremium, billing.StatusActive)
	if err != nil {
		return nil, err
	}
	return map[string]any{"markedPastDue": tag.RowsAffected()}, nil
}
