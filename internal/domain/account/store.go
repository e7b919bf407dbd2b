package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	var image *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, name, image, is_admin, created_at, last_login
    FROM users
    WHERE id = $1
  `, userID).Scan(&out.ID, &out.Email, &out.Name, &image, &out.Admin, &out.CreatedAt, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	if image != nil {
		out.Image = *image
	}
	return out, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID, name, email string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET name = $1, email = $2 WHERE id = $3
  `, name, email, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *Store) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1 AND id <> $2", email, excludeUserID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SetImage(ctx context.Context, userID, imagePath string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET image = $1 WHERE id = $2", imagePath, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
