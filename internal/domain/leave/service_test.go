package leave

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/storage"
)

type fakeStore struct {
	requests  []LeaveRequest
	createErr error
}

func (f *fakeStore) CreateRequest(_ context.Context, req LeaveRequest) (LeaveRequest, error) {
	if f.createErr != nil {
		return LeaveRequest{}, f.createErr
	}
	req.ID = "req-" + string(rune('a'+len(f.requests)))
	req.CreatedAt = time.Now()
	f.requests = append(f.requests, req)
	return req, nil
}

func (f *fakeStore) ListForEmployee(_ context.Context, employeeID string) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, r := range f.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, status Status, category Category) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, r := range f.requests {
		if (status == "" || r.Status == status) && (category == "" || r.Category == category) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (LeaveRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return LeaveRequest{}, ErrRequestNotFound
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, from, to Status) (bool, error) {
	for i := range f.requests {
		if f.requests[i].ID == id && f.requests[i].Status == from {
			f.requests[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

type decisions struct{ statuses []string }

func (d *decisions) LeaveDecision(status string) { d.statuses = append(d.statuses, status) }

func newTestService(t *testing.T) (*Service, *fakeStore, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080", storage.NewSigner("test-secret"))
	require.NoError(t, err)
	st := &fakeStore{}
	svc := NewService(st, files)
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) }
	return svc, st, files
}

func TestSubmitComputesDaysInclusively(t *testing.T) {
	svc, st, _ := newTestService(t)

	req, err := svc.Submit(context.Background(), "crew-1", SubmitInput{
		Category:  "annual",
		StartDate: day(2025, 7, 14),
		EndDate:   day(2025, 7, 16),
		Remark:    "  family trip ",
	})
	require.NoError(t, err)
	require.Equal(t, 3.0, req.Days)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, "family trip", req.Remark)
	require.Len(t, st.requests, 1)
}

func TestSubmitValidation(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "crew-1", SubmitInput{
		Category:  "holiday",
		StartDate: day(2025, 7, 16),
		EndDate:   day(2025, 7, 14),
	})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindValidation, appErr.Kind)
	require.Contains(t, appErr.Fields, "category")
	require.Contains(t, appErr.Fields, "endDate")
	require.Empty(t, st.requests)

	_, err = svc.Submit(context.Background(), "", SubmitInput{StartDate: day(2025, 7, 14)})
	require.True(t, apperr.Is(err, apperr.KindAuthorization))
}

func TestSubmitRejectsUnsafeEvidence(t *testing.T) {
	svc, st, files := newTestService(t)

	for _, name := range []string{"note.html", "x.js", "image.svg", "noext"} {
		_, err := svc.Submit(context.Background(), "crew-1", SubmitInput{
			Category:  "sick",
			StartDate: day(2025, 7, 14),
			Evidence:  &Evidence{FileName: name, ContentType: "image/png", Body: strings.NewReader("<script>")},
		})
		appErr, ok := apperr.As(err)
		require.True(t, ok, name)
		require.Equal(t, apperr.KindValidation, appErr.Kind, name)
		require.Contains(t, appErr.Fields, "evidence", name)
	}
	require.Empty(t, st.requests)

	exists, err := files.Exists(context.Background(), evidenceKey("crew-1", "note.html", svc.now()))
	require.NoError(t, err)
	require.False(t, exists)

	_, err = svc.Submit(context.Background(), "crew-1", SubmitInput{
		Category:  "sick",
		StartDate: day(2025, 7, 14),
		Evidence:  &Evidence{FileName: "mc.DOCX", Body: strings.NewReader("doc")},
	})
	require.NoError(t, err)
}

func TestSubmitUploadsEvidenceBeforeInsert(t *testing.T) {
	svc, st, files := newTestService(t)
	st.createErr = errors.New("insert failed")

	_, err := svc.Submit(context.Background(), "crew-1", SubmitInput{
		Category:  "sick",
		StartDate: day(2025, 7, 14),
		Evidence:  &Evidence{FileName: "mc.PDF", ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4")},
	})
	require.True(t, apperr.Is(err, apperr.KindRemote))

	key := evidenceKey("crew-1", "mc.PDF", svc.now())
	require.Equal(t, "leave-evidence/crew-1_1751364000000.pdf", key)
	exists, err := files.Exists(context.Background(), key)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestSubmitSignsEvidenceURL(t *testing.T) {
	svc, _, _ := newTestService(t)

	req, err := svc.Submit(context.Background(), "crew-1", SubmitInput{
		Category:  "sick",
		StartDate: day(2025, 7, 14),
		Evidence:  &Evidence{FileName: "mc.png", ContentType: "image/png", Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, req.EvidencePath)
	require.True(t, strings.HasPrefix(req.EvidenceURL, "http://localhost:8080/files/leave-evidence/"))
	require.Contains(t, req.EvidenceURL, "token=")
}

func TestBalanceUsesCurrentYear(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.requests = []LeaveRequest{
		{ID: "a", EmployeeID: "crew-1", Category: CategoryAnnual, Days: 5, Status: StatusApproved, LeaveDate: day(2025, 3, 3)},
		{ID: "b", EmployeeID: "crew-1", Category: CategoryAnnual, Days: 3, Status: StatusPending, LeaveDate: day(2025, 4, 7)},
		{ID: "c", EmployeeID: "crew-2", Category: CategoryAnnual, Days: 9, Status: StatusApproved, LeaveDate: day(2025, 4, 7)},
	}

	got, err := svc.Balance(context.Background(), "crew-1", 0)
	require.NoError(t, err)
	require.Equal(t, Balance{Total: 14, Used: 5, Balance: 9}, got[CategoryAnnual])

	got, err = svc.Balance(context.Background(), "crew-1", 2024)
	require.NoError(t, err)
	require.Equal(t, Balance{Total: 14, Used: 0, Balance: 14}, got[CategoryAnnual])
}

func TestDecideIsTerminal(t *testing.T) {
	svc, st, _ := newTestService(t)
	obs := &decisions{}
	svc.Obs = obs
	st.requests = []LeaveRequest{{ID: "a", EmployeeID: "crew-1", Status: StatusPending, LeaveDate: day(2025, 7, 1)}}

	req, err := svc.Decide(context.Background(), "a", StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, req.Status)
	require.NotNil(t, req.DecidedAt)

	_, err = svc.Decide(context.Background(), "a", StatusRejected)
	require.True(t, apperr.Is(err, apperr.KindInvalidState))
	require.Equal(t, StatusApproved, st.requests[0].Status)
	require.Equal(t, []string{"approved"}, obs.statuses)

	_, err = svc.Decide(context.Background(), "missing", StatusRejected)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Decide(context.Background(), "a", StatusPending)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestListFilters(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.requests = []LeaveRequest{
		{ID: "a", Status: StatusPending, Category: CategoryAnnual},
		{ID: "b", Status: StatusApproved, Category: CategorySick},
	}

	out, err := svc.List(context.Background(), StatusPending, "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "a", out[0].ID)

	_, err = svc.List(context.Background(), "cancelled", "")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
