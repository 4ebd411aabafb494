package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"hrms/internal/platform/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFailErrorStatusByKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("bad", nil), http.StatusBadRequest, "validation_error"},
		{apperr.Remote("run payroll", errors.New("procedure failed")), http.StatusBadGateway, "remote_error"},
		{apperr.Authorization("not yours"), http.StatusForbidden, "unauthorized_access"},
		{apperr.NotFound("payslip"), http.StatusNotFound, "not_found"},
		{apperr.InvalidState("already decided"), http.StatusConflict, "invalid_state"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FailError(rec, tc.err, "req-1")
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		env := decode(t, rec)
		require.False(t, env.Success)
		require.Equal(t, tc.code, env.Error.Code)
		require.Equal(t, "req-1", env.RequestID)
	}
}

func TestFailErrorRemoteSurfacesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperr.Remote("run payroll", errors.New("no salary rows")), "")
	env := decode(t, rec)
	require.Equal(t, "run payroll: no salary rows", env.Error.Message)
}

func TestFailErrorValidationFieldsSorted(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperr.Validation("invalid", map[string]string{"startDate": "required", "category": "unknown"}), "")
	var raw struct {
		Error struct {
			Details struct {
				Fields []FieldIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Equal(t, []FieldIssue{{Field: "category", Reason: "unknown"}, {Field: "startDate", Reason: "required"}}, raw.Error.Details.Fields)
}
