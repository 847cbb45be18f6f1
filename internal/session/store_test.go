package session

import (
	"context"
	"testing"
	"time"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/kvstore"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

func newTestStore() (*Store, *kvstore.MemoryStore) {
	kv := kvstore.NewMemoryStore()
	return New(kv), kv
}

func TestCurrent_AbsentByDefault(t *testing.T) {
	s, _ := newTestStore()

	u, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if u != nil {
		t.Errorf("Current = %+v, want nil", u)
	}
}

func TestSet_CurrentRoundTrip(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	want := domain.User{ID: "u1", Name: "Asha", Phone: "9999999999", JoinedDate: time.Now().UTC().Truncate(time.Second)}

	if err := s.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.SetToken(ctx, "token-1"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got == nil {
		t.Fatal("Current should return the stored user")
	}
	if got.Name != "Asha" || got.Phone != "9999999999" {
		t.Errorf("user = %+v, want %+v", got, want)
	}
}

func TestCurrent_UserWithoutTokenIsCleared(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()
	_ = s.Set(ctx, domain.User{ID: "u1", Name: "Asha"})

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != nil {
		t.Errorf("Current = %+v, want nil when token record is missing", got)
	}
	if _, ok, _ := kv.Get(ctx, UserKey); ok {
		t.Error("stale user record should have been cleared")
	}
}

func TestCurrent_MalformedDataFailsSafe(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()
	_ = kv.Set(ctx, UserKey, []byte("{broken"))
	_ = kv.Set(ctx, TokenKey, []byte("token-1"))

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current on malformed data: %v", err)
	}
	if got != nil {
		t.Errorf("Current = %+v, want nil", got)
	}
	if _, ok, _ := kv.Get(ctx, UserKey); ok {
		t.Error("malformed record should have been cleared")
	}
}

func TestClear_Idempotent(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	_ = s.Set(ctx, domain.User{ID: "u1"})
	_ = s.SetToken(ctx, "token-1")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if u, _ := s.Current(ctx); u != nil {
		t.Errorf("Current after Clear = %+v, want nil", u)
	}
	if tok, _ := s.Token(ctx); tok != "" {
		t.Errorf("Token after Clear = %q, want empty", tok)
	}
}

func TestSet_ReplacesPreviousSession(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	_ = s.Set(ctx, domain.User{ID: "u1", Name: "Ram"})
	_ = s.SetToken(ctx, "t1")
	_ = s.Set(ctx, domain.User{ID: "u2", Name: "Asha"})

	got, _ := s.Current(ctx)
	if got == nil || got.ID != "u2" {
		t.Fatalf("Current = %+v, want user u2", got)
	}
}
