package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/logging"
	"github.com/mkravets/contactdesk/internal/server/models"
)

type fakeKV struct {
	data map[string]string

	getErr error
	setErr error
	delErr error

	sets int
	dels int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.data[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return val, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.dels++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newCache(kv KV) *UserCache {
	return NewUserCache(kv, 300*time.Second, testLogger())
}

func TestGetOrLoad_MissLoadsAndCaches(t *testing.T) {
	kv := newFakeKV()
	c := newCache(kv)

	loads := 0
	loader := func(ctx context.Context, email string) (*models.User, error) {
		loads++
		return &models.User{ID: 7, Email: email, Username: "alice"}, nil
	}

	got, err := c.GetOrLoad(context.Background(), "alice@example.com", loader)
	if err != nil {
		t.Fatalf("GetOrLoad error: %v", err)
	}
	if got.ID != 7 || loads != 1 {
		t.Fatalf("unexpected user %+v loads=%d", got, loads)
	}

	// second call must be served from the cache
	got, err = c.GetOrLoad(context.Background(), "alice@example.com", loader)
	if err != nil {
		t.Fatalf("GetOrLoad error: %v", err)
	}
	if got.Username != "alice" || loads != 1 {
		t.Fatalf("expected cache hit, loads=%d", loads)
	}
}

func TestGetOrLoad_NotFoundNeverCached(t *testing.T) {
	kv := newFakeKV()
	c := newCache(kv)

	loads := 0
	loader := func(ctx context.Context, email string) (*models.User, error) {
		loads++
		return nil, common.ErrorNotFound
	}

	_, err := c.GetOrLoad(context.Background(), "ghost@example.com", loader)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if kv.sets != 0 {
		t.Fatalf("negative lookup must not be cached")
	}

	// the next call invokes the loader again
	_, _ = c.GetOrLoad(context.Background(), "ghost@example.com", loader)
	if loads != 2 {
		t.Fatalf("expected loader to run twice, got %d", loads)
	}
}

func TestGetOrLoad_KVErrorFallsBackToLoader(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	c := newCache(kv)

	loader := func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}

	got, err := c.GetOrLoad(context.Background(), "alice@example.com", loader)
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetOrLoad_CorruptEntryReloads(t *testing.T) {
	kv := newFakeKV()
	kv.data["alice@example.com"] = "{not json"
	c := newCache(kv)

	loader := func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 3, Email: email}, nil
	}

	got, err := c.GetOrLoad(context.Background(), "alice@example.com", loader)
	if err != nil {
		t.Fatalf("GetOrLoad error: %v", err)
	}
	if got.ID != 3 {
		t.Fatalf("unexpected user: %+v", got)
	}

	var stored models.User
	if err := json.Unmarshal([]byte(kv.data["alice@example.com"]), &stored); err != nil {
		t.Fatalf("entry was not repaired: %v", err)
	}
}

func TestInvalidate_Evicts(t *testing.T) {
	kv := newFakeKV()
	c := newCache(kv)

	loads := 0
	loader := func(ctx context.Context, email string) (*models.User, error) {
		loads++
		return &models.User{ID: 9, Email: email}, nil
	}

	_, _ = c.GetOrLoad(context.Background(), "bob@example.com", loader)
	c.Invalidate(context.Background(), "bob@example.com")
	_, _ = c.GetOrLoad(context.Background(), "bob@example.com", loader)

	if loads != 2 {
		t.Fatalf("expected reload after invalidation, loads=%d", loads)
	}
}
