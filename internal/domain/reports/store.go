package reports

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"hrms/internal/domain/period"
	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) count(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	if err := s.DB.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) EmployeeCount(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM crews")
}

func (s *Store) ActiveEmployeeCount(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM crews WHERE is_active")
}

func (s *Store) PayslipCount(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM payslips")
}

func (s *Store) PeriodPayslipCount(ctx context.Context, p period.Period) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM payslips WHERE month = $1", p.String())
}

func (s *Store) SalaryItemCount(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM salary_items")
}

func (s *Store) LeavePending(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM leaves WHERE status = 'pending'")
}

func (s *Store) EmployeeLeavePending(ctx context.Context, employeeID string) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM leaves WHERE crew_id = $1 AND status = 'pending'", employeeID)
}

func (s *Store) PayslipMonths(ctx context.Context, employeeID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT month FROM payslips WHERE crew_id = $1 ORDER BY month DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	months := []string{}
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, err
		}
		months = append(months, month)
	}
	return months, rows.Err()
}

func (s *Store) NoticeCount(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM notices")
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

type JobRun struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func (s *Store) ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, error) {
	query, args := buildJobRunsBaseQuery(filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []JobRun{}
	for rows.Next() {
		var run JobRun
		var detailsRaw []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.Details = decodeDetails(detailsRaw)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountJobRuns(ctx context.Context, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(filter)
	return s.count(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...)
}

func buildJobRunsBaseQuery(filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE 1=1
  `
	var args []any

	if value := strings.TrimSpace(filter.JobType); value != "" {
		args = append(args, value)
		query += " AND job_type = $" + strconv.Itoa(len(args))
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		args = append(args, value)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		args = append(args, *filter.StartedFrom)
		query += " AND started_at >= $" + strconv.Itoa(len(args))
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		args = append(args, *filter.StartedTo)
		query += " AND started_at <= $" + strconv.Itoa(len(args))
	}

	return query, args
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
