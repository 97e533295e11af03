package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restodash/authkit/kv"
)

func newStoreTest(t *testing.T) (*Store, *kv.Memory, *kv.Memory, *[]error) {
	t.Helper()

	ephemeral := kv.NewMemory()
	remembered := kv.NewMemory()
	var reported []error
	store := NewStore(ephemeral, remembered, "", func(err error) {
		reported = append(reported, err)
	})
	return store, ephemeral, remembered, &reported
}

func testSession(mode Mode) *Session {
	now := time.Now()
	return &Session{
		SessionID: "sid-1",
		User: User{
			ID:          "1",
			Username:    "admin",
			Email:       "admin@example.com",
			DisplayName: "Admin",
			Role:        "manager",
		},
		Token:     "abc",
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(time.Hour).UnixMilli(),
		Mode:      mode,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []Mode{Ephemeral, Remembered} {
		t.Run(mode.String(), func(t *testing.T) {
			store, _, _, _ := newStoreTest(t)
			want := testSession(mode)

			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}

			got := store.Load(ctx)
			if got == nil {
				t.Fatal("expected session after save")
			}
			if *got != *want {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestSaveEvictsOtherScope(t *testing.T) {
	ctx := context.Background()
	store, ephemeral, remembered, _ := newStoreTest(t)

	if err := store.Save(ctx, testSession(Ephemeral)); err != nil {
		t.Fatalf("save ephemeral: %v", err)
	}
	if err := store.Save(ctx, testSession(Remembered)); err != nil {
		t.Fatalf("save remembered: %v", err)
	}

	if _, err := ephemeral.Get(ctx, DefaultKey); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ephemeral copy evicted, got %v", err)
	}
	if _, err := remembered.Get(ctx, DefaultKey); err != nil {
		t.Fatalf("expected remembered copy present, got %v", err)
	}
}

func TestLoadCorruptBlobIsAbsent(t *testing.T) {
	ctx := context.Background()
	store, _, remembered, reported := newStoreTest(t)

	if err := remembered.Set(ctx, DefaultKey, []byte(`{"v":1,"token":`)); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	if got := store.Load(ctx); got != nil {
		t.Fatalf("expected corrupt blob treated as absent, got %+v", got)
	}
	if len(*reported) != 1 || !errors.Is((*reported)[0], ErrCorruptBlob) {
		t.Fatalf("expected one corrupt report, got %v", *reported)
	}
}

func TestLoadTruncatedFieldsAreCorrupt(t *testing.T) {
	ctx := context.Background()

	blobs := map[string]string{
		"missing token":   `{"v":1,"user":{"id":"1"},"expiresAt":123}`,
		"missing user":    `{"v":1,"token":"abc","expiresAt":123}`,
		"missing expiry":  `{"v":1,"user":{"id":"1"},"token":"abc"}`,
		"unknown version": `{"v":9,"user":{"id":"1"},"token":"abc","expiresAt":123}`,
	}

	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			store, _, remembered, _ := newStoreTest(t)
			if err := remembered.Set(ctx, DefaultKey, []byte(blob)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if got := store.Load(ctx); got != nil {
				t.Fatalf("expected absent, got %+v", got)
			}
		})
	}
}

func TestClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _, _, _ := newStoreTest(t)

	if err := store.Save(ctx, testSession(Remembered)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if got := store.Load(ctx); got != nil {
		t.Fatalf("expected empty store after clear, got %+v", got)
	}
}

func TestRememberedWinsOnLoad(t *testing.T) {
	ctx := context.Background()
	store, ephemeral, remembered, _ := newStoreTest(t)

	eph := testSession(Ephemeral)
	rem := testSession(Remembered)
	rem.SessionID = "sid-2"

	ephData, _ := Encode(eph)
	remData, _ := Encode(rem)
	if err := ephemeral.Set(ctx, DefaultKey, ephData); err != nil {
		t.Fatalf("seed ephemeral: %v", err)
	}
	if err := remembered.Set(ctx, DefaultKey, remData); err != nil {
		t.Fatalf("seed remembered: %v", err)
	}

	got := store.Load(ctx)
	if got == nil || got.SessionID != "sid-2" {
		t.Fatalf("expected remembered session to win, got %+v", got)
	}
}

func TestExpiredAtLeeway(t *testing.T) {
	now := time.Now()
	sess := testSession(Ephemeral)
	sess.ExpiresAt = now.Add(2 * time.Minute).UnixMilli()

	if sess.ExpiredAt(now, 0) {
		t.Fatal("session with 2m left should not be expired without leeway")
	}
	if !sess.ExpiredAt(now, 5*time.Minute) {
		t.Fatal("session with 2m left should count as expired under 5m leeway")
	}

	var nilSess *Session
	if !nilSess.ExpiredAt(now, 0) {
		t.Fatal("nil session must count as expired")
	}
}
