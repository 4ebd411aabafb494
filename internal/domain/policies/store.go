package policies

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

const policyColumns = `id, title, description, COALESCE(file_path, ''), COALESCE(created_by::text, ''), created_at, updated_at`

func scanPolicy(row pgx.Row) (Policy, error) {
	var p Policy
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.FilePath, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Policy{}, ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context) ([]Policy, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+policyColumns+" FROM policies ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Policy, error) {
	return scanPolicy(s.DB.QueryRow(ctx, "SELECT "+policyColumns+" FROM policies WHERE id = $1", id))
}

func (s *Store) Create(ctx context.Context, p Policy) (Policy, error) {
	return scanPolicy(s.DB.QueryRow(ctx, `
    INSERT INTO policies (title, description, file_path, created_by)
    VALUES ($1,$2,NULLIF($3,''),NULLIF($4,'')::uuid)
    RETURNING `+policyColumns, p.Title, p.Description, p.FilePath, p.CreatedBy))
}

func (s *Store) Update(ctx context.Context, p Policy) (Policy, error) {
	return scanPolicy(s.DB.QueryRow(ctx, `
    UPDATE policies SET title = $2, description = $3, file_path = NULLIF($4,''), updated_at = now()
    WHERE id = $1
    RETURNING `+policyColumns, p.ID, p.Title, p.Description, p.FilePath))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM policies WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
