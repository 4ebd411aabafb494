package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
)

type signUpPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"oneof=admin hr employee"`
}

func TestStructNamesFieldsByJSONKey(t *testing.T) {
	v := NewValidator()
	v.Struct(signUpPayload{Email: "not-an-email", Password: "short", Role: "owner"})
	require.Equal(t, []ValidationIssue{
		{Field: "email", Reason: "must be a valid email address"},
		{Field: "password", Reason: "must be at least 8"},
		{Field: "role", Reason: "must be one of admin hr employee"},
	}, v.Issues())

	v = NewValidator()
	v.Struct(signUpPayload{Email: "a@b.co", Password: "longenough", Role: "hr"})
	require.False(t, v.HasIssues())
}

func TestDecodeJSON(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
		var dst signUpPayload
		require.False(t, DecodeJSON(rec, req, &dst, "req-1"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_payload")
	})

	t.Run("too large", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", 64)+`"}`))
		req.Body = http.MaxBytesReader(rec, req.Body, 16)
		var dst signUpPayload
		require.False(t, DecodeJSON(rec, req, &dst, "req-1"))
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("validation details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"longenough","role":"hr"}`))
		var dst signUpPayload
		require.False(t, DecodeJSON(rec, req, &dst, "req-1"))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Details struct {
					Fields []ValidationIssue `json:"fields"`
				} `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "validation_error", body.Error.Code)
		require.Equal(t, []ValidationIssue{{Field: "email", Reason: "is required"}}, body.Error.Details.Fields)
	})

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"longenough","role":"employee"}`))
		var dst signUpPayload
		require.True(t, DecodeJSON(rec, req, &dst, "req-1"))
		require.Equal(t, "employee", dst.Role)
	})
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (period.Period, bool, error) {
	return period.Period{}, false, errors.New("redis down")
}

func (failingStore) Set(context.Context, string, period.Period) error {
	return errors.New("redis down")
}

func TestResolvePeriod(t *testing.T) {
	now := func() period.Period { return period.New(2025, 7) }
	store := period.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "user-1", period.New(2025, 2)))
	resolver := period.NewResolver(store, now)

	p, err := ResolvePeriod(httptest.NewRequest(http.MethodGet, "/?period=2024-12", nil), resolver, "user-1")
	require.NoError(t, err)
	require.Equal(t, period.New(2024, 12), p)

	p, err = ResolvePeriod(httptest.NewRequest(http.MethodGet, "/", nil), resolver, "user-1")
	require.NoError(t, err)
	require.Equal(t, period.New(2025, 2), p)

	p, err = ResolvePeriod(httptest.NewRequest(http.MethodGet, "/", nil), resolver, "user-2")
	require.NoError(t, err)
	require.Equal(t, period.New(2025, 7), p)

	_, err = ResolvePeriod(httptest.NewRequest(http.MethodGet, "/?period=2025-13", nil), resolver, "user-1")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ResolvePeriod(httptest.NewRequest(http.MethodGet, "/", nil), period.NewResolver(failingStore{}, now), "user-1")
	require.True(t, apperr.Is(err, apperr.KindRemote))
}

func TestFormFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("remark", "clinic visit"))
	part, err := mw.CreateFormFile("evidence", "../../mc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.True(t, IsMultipart(req))
	require.NoError(t, ParseMultipart(req, 1<<20))

	upload, err := FormFile(req, "evidence")
	require.NoError(t, err)
	defer upload.Close()
	require.Equal(t, "mc.pdf", upload.FileName)
	raw, err := io.ReadAll(upload.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(raw))

	missing, err := FormFile(req, "other")
	require.NoError(t, err)
	require.Nil(t, missing)
	require.NoError(t, missing.Close())
}
