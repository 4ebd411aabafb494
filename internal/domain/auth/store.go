package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrms/internal/platform/querier"
)

const uniqueViolation = "23505"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, meta Metadata) (User, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return User{}, err
	}
	out := User{Email: email, Metadata: meta}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, metadata)
    VALUES ($1,$2,$3)
    RETURNING id, created_at
  `, email, passwordHash, metaJSON).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (Credentials, error) {
	var out Credentials
	var metaJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, metadata, created_at, last_login
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&out.ID, &out.Email, &out.PasswordHash, &metaJSON, &out.CreatedAt, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	}
	if err != nil {
		return Credentials{}, err
	}
	if err := json.Unmarshal(metaJSON, &out.Metadata); err != nil {
		return Credentials{}, err
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, userID string) (User, error) {
	var out User
	var metaJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, metadata, created_at, last_login
    FROM users
    WHERE id = $1
  `, userID).Scan(&out.ID, &out.Email, &metaJSON, &out.CreatedAt, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(metaJSON, &out.Metadata); err != nil {
		return User{}, err
	}
	return out, nil
}

// LinkedEmployeeID returns "" when the account has no crew record.
func (s *Store) LinkedEmployeeID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM crews WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND token_hash = $2", userID, tokenHash)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, tokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
