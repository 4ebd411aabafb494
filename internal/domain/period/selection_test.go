package period

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func fixedNow() Period { return New(2026, time.October) }

func TestResolverPrecedence(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), fixedNow)

	p, err := r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	require.Equal(t, "2026-10", p.String(), "falls back to the clock")

	require.NoError(t, r.Select(ctx, "u1", New(2026, time.August)))
	p, err = r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	require.Equal(t, "2026-08", p.String(), "stored selection beats the clock")

	p, err = r.Resolve(ctx, "u1", "2025-12")
	require.NoError(t, err)
	require.Equal(t, "2025-12", p.String(), "explicit value beats the selection")

	p, err = r.Resolve(ctx, "u2", "")
	require.NoError(t, err)
	require.Equal(t, "2026-10", p.String(), "selections are per user")

	_, err = r.Resolve(ctx, "u1", "not-a-month")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client)

	_, ok, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "u1", New(2025, time.June)))
	p, ok, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2025-06", p.String())
	require.True(t, mr.TTL("hrms:selected_month:u1") > 0)

	mr.Set("hrms:selected_month:u2", "garbage")
	_, ok, err = store.Get(ctx, "u2")
	require.NoError(t, err)
	require.False(t, ok)
}
