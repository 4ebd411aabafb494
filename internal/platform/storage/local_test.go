package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://files.test/", NewSigner("storage-secret"))
	require.NoError(t, err)
	return s
}

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("policy body"), "policies/handbook.pdf", "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "policies/handbook.pdf", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	require.Equal(t, "policy body", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Download(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTraversalIsContained(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("x"), "../../etc/evil.txt", "text/plain")
	require.NoError(t, err)
	require.Equal(t, "etc/evil.txt", key)

	_, err = s.Upload(ctx, strings.NewReader("x"), "", "text/plain")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestSignedURLVerifies(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	raw, err := s.GetURL(ctx, "leave/abc.png", time.Hour)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "http://files.test/files/leave/abc.png?token="))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	token := parsed.Query().Get("token")

	require.NoError(t, s.Verify("leave/abc.png", token))
	require.ErrorIs(t, s.Verify("leave/other.png", token), ErrInvalidToken)
	require.ErrorIs(t, s.Verify("leave/abc.png", token+"x"), ErrInvalidToken)
}

func TestSignedURLExpires(t *testing.T) {
	signer := NewSigner("storage-secret")
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	token, err := signer.Sign("policies/a.pdf", time.Hour)
	require.NoError(t, err)
	require.NoError(t, signer.Verify("policies/a.pdf", token))

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	require.ErrorIs(t, signer.Verify("policies/a.pdf", token), ErrInvalidToken)
}
