package leave

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    l.id, l.crew_id, COALESCE(c.name, ''), l.type, l.leave_date, l.end_date, l.days, l.status,
    COALESCE(l.remark, ''), COALESCE(l.evidence_url, ''), l.decided_at, l.created_at
`

func scanRequest(row pgx.Row) (LeaveRequest, error) {
	var req LeaveRequest
	var category, status string
	if err := row.Scan(&req.ID, &req.EmployeeID, &req.EmployeeName, &category, &req.LeaveDate, &req.EndDate,
		&req.Days, &status, &req.Remark, &req.EvidencePath, &req.DecidedAt, &req.CreatedAt); err != nil {
		return LeaveRequest{}, err
	}
	req.Category = Category(category)
	req.Status = Status(status)
	return req, nil
}

func (s *Store) queryRequests(ctx context.Context, sql string, args ...any) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, req LeaveRequest) (LeaveRequest, error) {
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leaves (crew_id, type, leave_date, end_date, days, status, remark, evidence_url)
    VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''))
    RETURNING id, created_at
  `, req.EmployeeID, string(req.Category), req.LeaveDate, req.EndDate, req.Days, string(req.Status),
		req.Remark, req.EvidencePath).Scan(&req.ID, &req.CreatedAt); err != nil {
		return LeaveRequest{}, err
	}
	return req, nil
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	return s.queryRequests(ctx, `
    SELECT`+requestColumns+`
    FROM leaves l
    LEFT JOIN crews c ON c.id = l.crew_id
    WHERE l.crew_id = $1
    ORDER BY l.leave_date DESC, l.created_at DESC
  `, employeeID)
}

func (s *Store) List(ctx context.Context, status Status, category Category) ([]LeaveRequest, error) {
	var where []string
	var args []any
	if status != "" {
		args = append(args, string(status))
		where = append(where, "l.status = $"+strconv.Itoa(len(args)))
	}
	if category != "" {
		args = append(args, string(category))
		where = append(where, "l.type = $"+strconv.Itoa(len(args)))
	}
	sql := `
    SELECT` + requestColumns + `
    FROM leaves l
    LEFT JOIN crews c ON c.id = l.crew_id`
	if len(where) > 0 {
		sql += "\n    WHERE " + strings.Join(where, " AND ")
	}
	sql += "\n    ORDER BY l.leave_date DESC, l.created_at DESC"
	return s.queryRequests(ctx, sql, args...)
}

func (s *Store) Get(ctx context.Context, id string) (LeaveRequest, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+`
    FROM leaves l
    LEFT JOIN crews c ON c.id = l.crew_id
    WHERE l.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrRequestNotFound
	}
	return req, err
}

func (s *Store) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves SET status = $3, decided_at = now()
    WHERE id = $1 AND status = $2
  `, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
