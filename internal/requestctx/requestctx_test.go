package requestctx

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithActor(ctx, Actor{UserID: "u1", IP: "10.0.0.1"})

	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetActor(ctx); got.UserID != "u1" || got.IP != "10.0.0.1" {
		t.Fatalf("unexpected actor: %+v", got)
	}
	if got := GetActor(context.Background()); got.UserID != "" {
		t.Fatalf("expected empty actor, got %+v", got)
	}
}
