package notices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Notice, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, content, COALESCE(created_by::text, ''), created_at, updated_at
    FROM notices
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notice{}
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, title, content, createdBy string) (Notice, error) {
	n := Notice{Title: title, Content: content, CreatedBy: createdBy}
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO notices (title, content, created_by)
    VALUES ($1,$2,NULLIF($3,'')::uuid)
    RETURNING id, created_at, updated_at
  `, title, content, createdBy).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return Notice{}, err
	}
	return n, nil
}

func (s *Store) Update(ctx context.Context, id, title, content string) (Notice, error) {
	var n Notice
	err := s.DB.QueryRow(ctx, `
    UPDATE notices SET title = $2, content = $3, updated_at = now()
    WHERE id = $1
    RETURNING id, title, content, COALESCE(created_by::text, ''), created_at, updated_at
  `, id, title, content).Scan(&n.ID, &n.Title, &n.Content, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notice{}, ErrNotFound
	}
	return n, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM notices WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
