package directory

import (
	"context"
	"testing"
	"time"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/kvstore"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

func newTestDirectory() *Directory {
	return New(kvstore.NewMemoryStore())
}

func TestKey_PrefersPhone(t *testing.T) {
	u := domain.User{Phone: "9999999999", Email: "asha@example.com"}
	if got := Key(u); got != "9999999999" {
		t.Errorf("Key = %q, want %q", got, "9999999999")
	}
}

func TestKey_FallsBackToEmail(t *testing.T) {
	u := domain.User{Email: "asha@example.com"}
	if got := Key(u); got != "asha@example.com" {
		t.Errorf("Key = %q, want %q", got, "asha@example.com")
	}
}

func TestUpsert_FindByIdentifier(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	rec := Record{User: domain.User{ID: "u1", Name: "Ram", Phone: "7000000001", JoinedDate: time.Now().UTC()}}

	if err := d.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	found, err := d.FindByIdentifier(ctx, "7000000001")
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if found == nil {
		t.Fatal("FindByIdentifier should find the upserted entry")
	}
	if found.Name != "Ram" {
		t.Errorf("Name = %q, want %q", found.Name, "Ram")
	}
}

func TestFindByIdentifier_MatchesEmail(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	_ = d.Upsert(ctx, Record{User: domain.User{ID: "u1", Name: "Asha", Phone: "9999999999", Email: "asha@example.com"}})

	found, err := d.FindByIdentifier(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if found == nil || found.ID != "u1" {
		t.Fatalf("FindByIdentifier by email = %+v, want user u1", found)
	}
}

func TestFindByIdentifier_Absent(t *testing.T) {
	d := newTestDirectory()

	found, err := d.FindByIdentifier(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if found != nil {
		t.Errorf("FindByIdentifier = %+v, want nil", found)
	}
}

func TestUpsert_ReplacesExistingKey(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	_ = d.Upsert(ctx, Record{User: domain.User{ID: "u1", Name: "Old", Phone: "7000000001"}})
	_ = d.Upsert(ctx, Record{User: domain.User{ID: "u1", Name: "New", Phone: "7000000001"}})

	found, _ := d.FindByIdentifier(ctx, "7000000001")
	if found == nil || found.Name != "New" {
		t.Fatalf("entry = %+v, want replaced value", found)
	}
}

func TestReplaceByID_KeepsOldKeyOnPhoneChange(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	_ = d.Upsert(ctx, Record{User: domain.User{ID: "u1", Name: "Ram", Phone: "7000000001"}, PasswordHash: "hash"})

	updated := domain.User{ID: "u1", Name: "Ram", Phone: "8000000002"}
	if err := d.ReplaceByID(ctx, updated); err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}

	// The entry stays under the old key; the value carries the new phone.
	found, _ := d.FindByIdentifier(ctx, "8000000002")
	if found == nil {
		t.Fatal("updated entry should be reachable by its new phone")
	}
	if found.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want preserved %q", found.PasswordHash, "hash")
	}

	raw, ok, _ := kvGet(d)
	if !ok {
		t.Fatal("directory record should be persisted")
	}
	if !containsKey(raw, "7000000001") {
		t.Error("entry should remain under the old phone key")
	}
	if containsKey(raw, "8000000002") {
		t.Error("entry must not be re-keyed to the new phone")
	}
}

func TestReplaceByID_UnknownIDIsNoop(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	_ = d.Upsert(ctx, Record{User: domain.User{ID: "u1", Phone: "7000000001"}})

	if err := d.ReplaceByID(ctx, domain.User{ID: "missing", Phone: "123"}); err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}
	if found, _ := d.FindByIdentifier(ctx, "123"); found != nil {
		t.Error("no entry should be created for an unknown id")
	}
}

func TestLoad_MalformedDataReadsAsEmpty(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	ctx := context.Background()
	_ = kv.Set(ctx, StorageKey, []byte("{not json"))
	d := New(kv)

	found, err := d.FindByIdentifier(ctx, "7000000001")
	if err != nil {
		t.Fatalf("FindByIdentifier on malformed data: %v", err)
	}
	if found != nil {
		t.Errorf("found = %+v, want nil", found)
	}
}

// kvGet re-reads the raw persisted directory record for key-level assertions.
func kvGet(d *Directory) (map[string]Record, bool, error) {
	users, err := d.load(context.Background())
	if err != nil {
		return nil, false, err
	}
	return users, len(users) > 0, nil
}

func containsKey(users map[string]Record, key string) bool {
	_, ok := users[key]
	return ok
}
