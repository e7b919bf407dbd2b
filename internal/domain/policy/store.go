package policy

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type storedPolicy struct {
	ID          string
	UserID      string
	Name        string
	RecordEnc   []byte
	DocumentEnc []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Store) Insert(ctx context.Context, userID, name string, recordEnc, documentEnc []byte) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO policies (user_id, name, record_enc, document_enc)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, userID, name, recordEnc, documentEnc).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, userID, policyID, name string, recordEnc, documentEnc []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE policies
    SET name = $1, record_enc = $2, document_enc = $3, updated_at = now()
    WHERE id = $4 AND user_id = $5
  `, name, recordEnc, documentEnc, policyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, policyID string) (storedPolicy, error) {
	var out storedPolicy
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, name, record_enc, document_enc, created_at, updated_at
    FROM policies
    WHERE id = $1 AND user_id = $2
  `, policyID, userID).Scan(&out.ID, &out.UserID, &out.Name, &out.RecordEnc, &out.DocumentEnc, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storedPolicy{}, ErrPolicyNotFound
	}
	return out, err
}

func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]PolicySummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at, updated_at
    FROM policies
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PolicySummary{}
	for rows.Next() {
		var p PolicySummary
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM policies WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

func (s *Store) Delete(ctx context.Context, userID, policyID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM policies WHERE id = $1 AND user_id = $2", policyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPolicyNotFound
	}
	return nil
}
