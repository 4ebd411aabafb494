package mehandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
	"hrms/internal/transport/http/handlers/handlertest"
)

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) ForUser(_ context.Context, userID string) (employee.Employee, error) {
	emp, ok := f[userID]
	if !ok {
		return employee.Employee{}, apperr.NotFound("employee")
	}
	return emp, nil
}

func setup() http.Handler {
	resolver := period.NewResolver(period.NewMemoryStore(), func() period.Period { return period.New(2025, time.July) })
	employees := fakeEmployees{
		"user-emp": {ID: "crew-1", UserID: "user-emp", Name: "Tan", NRIC: "S1234567D", BankAccountNo: "1234567890"},
	}
	return handlertest.Router(NewHandler(resolver, employees))
}

func TestPeriodSelectionIsPerUser(t *testing.T) {
	router := setup()

	rec := handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/period", nil, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)
	var got periodResponse
	handlertest.Data(t, rec, &got)
	require.Equal(t, "2025-07", got.Period.String())
	require.Equal(t, "July 2025", got.Label)

	rec = handlertest.Serve(router, handlertest.JSON(http.MethodPut, "/api/v1/me/period", `{"period":"2025-02"}`, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/period", nil, handlertest.HR))
	handlertest.Data(t, rec, &got)
	require.Equal(t, "2025-02", got.Period.String())

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/period", nil, handlertest.Admin))
	handlertest.Data(t, rec, &got)
	require.Equal(t, "2025-07", got.Period.String(), "another user's selection is untouched")
}

func TestSetPeriodValidation(t *testing.T) {
	router := setup()
	rec := handlertest.Serve(router, handlertest.JSON(http.MethodPut, "/api/v1/me/period", `{"period":"2025-13"}`, handlertest.HR))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/period", nil, auth.UserContext{}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnEmployeeRecordIsMasked(t *testing.T) {
	router := setup()
	rec := handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/employee", nil, handlertest.Employee))
	require.Equal(t, http.StatusOK, rec.Code)
	var emp employee.Employee
	handlertest.Data(t, rec, &emp)
	require.Equal(t, "S*****67D", emp.NRIC)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/me/employee", nil, handlertest.HR))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
