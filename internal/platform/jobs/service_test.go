package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type runRow struct{ id string }

func (r runRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	return nil
}

// recordingDB captures the job_runs writes and whether their context had
// already been cancelled.
type recordingDB struct {
	insertErr error
	updateErr error
	status    any
}

func (d *recordingDB) Exec(ctx context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	d.updateErr = ctx.Err()
	d.status = args[0]
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (d *recordingDB) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row {
	d.insertErr = ctx.Err()
	return runRow{id: "run-1"}
}

func TestRunNowWithoutDatabase(t *testing.T) {
	svc := New(nil)

	out, err := svc.RunNow(context.Background(), JobPayrollRun, func(context.Context) (any, error) {
		return map[string]int{"payslips": 3}, nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"payslips": 3}, out)

	boom := errors.New("procedure failed")
	out, err = svc.RunNow(context.Background(), JobPayrollRun, func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Nil(t, out)
}

func TestEnqueueRunsInBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(nil)
	svc.Start(ctx)

	done := make(chan struct{})
	svc.Enqueue(JobStorageCleanup, func(context.Context) (any, error) {
		close(done)
		return nil, nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
}

func TestRunRecordedAfterCallerCancels(t *testing.T) {
	db := &recordingDB{}
	svc := New(db)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.RunNow(ctx, JobPayrollRun, func(ctx context.Context) (any, error) {
		cancel()
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, db.insertErr)
	require.NoError(t, db.updateErr)
	require.Equal(t, StatusFailed, db.status)

	_, err = svc.RunNow(ctx, JobStorageCleanup, func(context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, db.insertErr, "already-cancelled caller")
	require.NoError(t, db.updateErr)
	require.Equal(t, StatusCompleted, db.status)
}
