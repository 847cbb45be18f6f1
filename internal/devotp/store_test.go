package devotp

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "7000000001", "123456", time.Now().UTC().Add(5*time.Minute))

	code, ok := store.Get(ctx, "7000000001")
	if !ok {
		t.Fatal("Get should return the code after Put")
	}
	if code != "123456" {
		t.Errorf("code = %q, want %q", code, "123456")
	}
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "7000000001", "111111", time.Time{})
	store.Put(ctx, "7000000001", "222222", time.Time{})

	code, ok := store.Get(ctx, "7000000001")
	if !ok || code != "222222" {
		t.Errorf("code = %q ok=%v, want latest code", code, ok)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	code, ok := store.Get(context.Background(), "nope")
	if ok {
		t.Error("Get should return false for an unknown identifier")
	}
	if code != "" {
		t.Errorf("code = %q, want empty string", code)
	}
}

func TestMemoryStore_GetExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "7000000001", "123456", time.Now().UTC().Add(-time.Minute))

	if _, ok := store.Get(ctx, "7000000001"); ok {
		t.Error("Get should return false for an expired code")
	}
}

func TestMemoryStore_ZeroExpiryNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.nowF = func() time.Time { return time.Now().UTC().Add(1000 * time.Hour) }

	store.Put(ctx, "7000000001", "123456", time.Time{})

	if _, ok := store.Get(ctx, "7000000001"); !ok {
		t.Error("code with zero expiry should never expire")
	}
}
