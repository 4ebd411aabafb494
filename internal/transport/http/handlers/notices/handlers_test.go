package noticeshandler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hrms/internal/domain/notices"
	"hrms/internal/platform/apperr"
	"hrms/internal/transport/http/handlers/handlertest"
)

type fakeNotices struct {
	items map[string]notices.Notice
}

func (f *fakeNotices) List(context.Context) ([]notices.Notice, error) {
	out := []notices.Notice{}
	for _, n := range f.items {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotices) Create(_ context.Context, title, content, createdBy string) (notices.Notice, error) {
	n := notices.Notice{ID: handlertest.OtherID, Title: strings.TrimSpace(title), Content: content, CreatedBy: createdBy}
	f.items[n.ID] = n
	return n, nil
}

func (f *fakeNotices) Update(_ context.Context, id, title, content string) (notices.Notice, error) {
	if _, ok := f.items[id]; !ok {
		return notices.Notice{}, apperr.NotFound("notice")
	}
	f.items[id] = notices.Notice{ID: id, Title: title, Content: content}
	return f.items[id], nil
}

func (f *fakeNotices) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("notice")
	}
	delete(f.items, id)
	return nil
}

func TestNoticeLifecycle(t *testing.T) {
	svc := &fakeNotices{items: map[string]notices.Notice{}}
	router := handlertest.Router(NewHandler(svc, handlertest.Enforcer(t)))

	rec := handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/notices", `{"title":"Town hall","content":"Friday"}`, handlertest.Employee))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/notices", `{"content":"no title"}`, handlertest.HR))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Serve(router, handlertest.JSON(http.MethodPost, "/api/v1/notices", `{"title":"Town hall","content":"Friday"}`, handlertest.HR))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "user-hr", svc.items[handlertest.OtherID].CreatedBy)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodGet, "/api/v1/notices", nil, handlertest.Employee))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []notices.Notice
	handlertest.Data(t, rec, &list)
	require.Len(t, list, 1)

	rec = handlertest.Serve(router, handlertest.JSON(http.MethodPut, "/api/v1/notices/"+handlertest.OtherID, `{"title":"Town hall moved","content":"Monday"}`, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodDelete, "/api/v1/notices/"+handlertest.OtherID, nil, handlertest.HR))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodDelete, "/api/v1/notices/"+handlertest.OtherID, nil, handlertest.HR))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = handlertest.Serve(router, handlertest.Request(http.MethodDelete, "/api/v1/notices/n-1", nil, handlertest.HR))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))
}
