package leavehandler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrms/internal/domain/leave"
	"hrms/internal/platform/apperr"
	"hrms/internal/transport/http/handlers/handlertest"
)

type fakeLeave struct {
	submitted  []leave.SubmitInput
	submitter  string
	evidence   []byte
	balanceFor int
	decided    map[string]leave.Status
}

func (f *fakeLeave) Submit(_ context.Context, employeeID string, in leave.SubmitInput) (leave.LeaveRequest, error) {
	if employeeID == "" {
		return leave.LeaveRequest{}, apperr.Authorization("no employee record linked to this account")
	}
	f.submitter = employeeID
	f.submitted = append(f.submitted, in)
	if in.Evidence != nil {
		f.evidence, _ = io.ReadAll(in.Evidence.Body)
	}
	days, _ := leave.CalculateDays(in.StartDate, in.EndDate)
	return leave.LeaveRequest{ID: "leave-1", EmployeeID: employeeID, Category: leave.NormalizeCategory(in.Category), Days: days, Status: leave.StatusPending}, nil
}

func (f *fakeLeave) ListMine(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return []leave.LeaveRequest{{ID: "leave-1", EmployeeID: employeeID}}, nil
}

func (f *fakeLeave) Balance(_ context.Context, _ string, year int) (map[leave.Category]leave.Balance, error) {
	f.balanceFor = year
	return leave.ComputeBalances(nil, year), nil
}

func (f *fakeLeave) List(_ context.Context, status leave.Status, _ leave.Category) ([]leave.LeaveRequest, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid filter", map[string]string{"status": "must be pending, approved or rejected"})
	}
	return []leave.LeaveRequest{}, nil
}

func (f *fakeLeave) Decide(_ context.Context, id string, decision leave.Status) (leave.LeaveRequest, error) {
	if f.decided == nil {
		f.decided = map[string]leave.Status{}
	}
	if _, done := f.decided[id]; done {
		return leave.LeaveRequest{}, apperr.InvalidState("leave request already %s", f.decided[id])
	}
	f.decided[id] = decision
	return leave.LeaveRequest{ID: id, Status: decision}, nil
}

func setup(t *testing.T) (http.Handler, *fakeLeave) {
	svc := &fakeLeave{}
	return handlertest.Router(NewHandler(svc, handlertest.Enforcer(t))), svc
}

func TestSubmitJSON(t *testing.T) {
	router, svc := setup(t)
	body := `{"category":"sick","startDate":"2025-07-01","endDate":"2025-07-03","remark":"flu"}`
	rec := handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/leave/requests", body, handlertest.Employee))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Equal(t, handlertest.CrewID, svc.submitter)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), svc.submitted[0].StartDate)
	var created leave.LeaveRequest
	handlertest.Data(t, rec, &created)
	require.Equal(t, 3.0, created.Days)
	require.Equal(t, leave.CategorySick, created.Category)
}

func TestSubmitRejectsReversedDates(t *testing.T) {
	router, svc := setup(t)
	body := `{"startDate":"2025-07-03","endDate":"2025-07-01"}`
	rec := handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/leave/requests", body, handlertest.Employee))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.submitted)
}

func TestSubmitWithoutEmployeeRecord(t *testing.T) {
	router, _ := setup(t)
	rec := handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/leave/requests", `{"startDate":"2025-07-01"}`, handlertest.HR))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "unauthorized_access", handlertest.ErrorCode(t, rec))
}

func TestSubmitMultipartWithEvidence(t *testing.T) {
	router, svc := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("category", "annual"))
	require.NoError(t, mw.WriteField("startDate", "2025-07-01"))
	part, err := mw.CreateFormFile("evidence", "mc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 note"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := handlertest.Request(http.MethodPost, "/api/v1/leave/requests", &buf, handlertest.Employee)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := handlertest.Serve(router, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, svc.submitted[0].Evidence)
	require.Equal(t, "mc.pdf", svc.submitted[0].Evidence.FileName)
	require.Equal(t, "%PDF-1.4 note", string(svc.evidence))
}

func TestBalanceYear(t *testing.T) {
	router, svc := setup(t)
	rec := handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/leave/balance?year=2024", nil, handlertest.Employee))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2024, svc.balanceFor)

	var resp balanceResponse
	handlertest.Data(t, rec, &resp)
	require.Equal(t, 14.0, resp.Balances[leave.CategoryAnnual].Balance)
	require.Len(t, resp.Balances, 4)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/leave/balance?year=abc", nil, handlertest.Employee))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideIsHROnlyAndTerminal(t *testing.T) {
	router, _ := setup(t)

	rec := handlertest.Serve(router, handlertest.Request(http.MethodPost, "/api/v1/leave/requests/"+handlertest.OtherID+"/approve", nil, handlertest.Employee))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodPost, "/api/v1/leave/requests/"+handlertest.OtherID+"/approve", nil, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)
	var decided leave.LeaveRequest
	handlertest.Data(t, rec, &decided)
	require.Equal(t, leave.StatusApproved, decided.Status)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodPost, "/api/v1/leave/requests/"+handlertest.OtherID+"/reject", nil, handlertest.HR))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "invalid_state", handlertest.ErrorCode(t, rec))
}

func TestDecideRejectsMalformedID(t *testing.T) {
	router, svc := setup(t)

	rec := handlertest.Serve(router, handlertest.Request(http.MethodPost, "/api/v1/leave/requests/x/approve", nil, handlertest.HR))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))
	require.Empty(t, svc.decided)
}

func TestListFilterValidation(t *testing.T) {
	router, _ := setup(t)
	rec := handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/leave/requests?status=cancelled", nil, handlertest.HR))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/leave/requests?status=pending", nil, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)
}
