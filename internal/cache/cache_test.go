// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]Entry)}
}

func (s *memStore) GetEntry(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *memStore) PutEntry(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = *entry
	return nil
}

func (s *memStore) DeleteEntry(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) DeleteComponent(_ context.Context, component string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if entry.Component == component {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *memStore) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if !entry.ExpiresAt.After(before) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetAndGet(t *testing.T) {
	c := New(newMemStore(), time.Minute, time.Minute)
	ctx := context.Background()

	want := payload{Name: "Agra", Count: 12}
	if err := c.Set(ctx, "k1", "directory", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	hit, err := c.Get(ctx, "k1", "directory", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New(newMemStore(), time.Minute, time.Minute)

	var got payload
	hit, err := c.Get(context.Background(), "absent", "directory", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss for absent key")
	}

	stats := c.GetStats()
	if stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
}

func TestExpiredEntryIsMissAndDeleted(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, time.Minute)
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "k1", "performance", payload{Name: "x"}, -time.Second); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	var got payload
	hit, err := c.Get(ctx, "k1", "performance", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
	if store.len() != 0 {
		t.Error("expired entry should be deleted on read")
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestSchemaVersionMismatchIsMiss(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, time.Minute)
	ctx := context.Background()

	entry := &Entry{
		Key:           "k1",
		Component:     "summary",
		SchemaVersion: SchemaVersion + 1,
		Payload:       []byte(`{"name":"x"}`),
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	if err := store.PutEntry(ctx, entry); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	var got payload
	hit, err := c.Get(ctx, "k1", "summary", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("version mismatch should be a miss")
	}
	if store.len() != 0 {
		t.Error("mismatched entry should be deleted")
	}
}

func TestSetOverwritesExisting(t *testing.T) {
	c := New(newMemStore(), time.Minute, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "directory", payload{Name: "old"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "k1", "directory", payload{Name: "new"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if hit, _ := c.Get(ctx, "k1", "directory", &got); !hit {
		t.Fatal("expected hit")
	}
	if got.Name != "new" {
		t.Errorf("got %q, want overwritten value", got.Name)
	}
}

func TestInvalidateComponent(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "d1", "directory", payload{Name: "a"})
	_ = c.Set(ctx, "d2", "directory", payload{Name: "b"})
	_ = c.Set(ctx, "p1", "performance", payload{Name: "c"})

	if err := c.InvalidateComponent(ctx, "directory"); err != nil {
		t.Fatalf("InvalidateComponent: %v", err)
	}

	if store.len() != 1 {
		t.Errorf("store has %d entries, want 1", store.len())
	}
	var got payload
	if hit, _ := c.Get(ctx, "p1", "performance", &got); !hit {
		t.Error("other component should survive invalidation")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, 10*time.Millisecond)
	ctx := context.Background()

	_ = c.SetWithTTL(ctx, "old", "directory", payload{}, -time.Second)
	_ = c.Set(ctx, "fresh", "directory", payload{})

	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for store.len() > 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if store.len() != 1 {
		t.Errorf("store has %d entries after sweep, want 1", store.len())
	}
}

func TestHitRate(t *testing.T) {
	c := New(newMemStore(), time.Minute, time.Minute)
	ctx := context.Background()

	if c.HitRate() != 0.0 {
		t.Errorf("empty cache hit rate = %f, want 0", c.HitRate())
	}

	_ = c.Set(ctx, "k1", "directory", payload{})
	var got payload
	_, _ = c.Get(ctx, "k1", "directory", &got)
	_, _ = c.Get(ctx, "missing", "directory", &got)

	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("hit rate = %f, want 50", rate)
	}
}

func TestGenerateKey(t *testing.T) {
	type params struct {
		State string
		Limit int
	}

	k1 := GenerateKey("districts", params{State: "Uttar Pradesh", Limit: 10})
	k2 := GenerateKey("districts", params{State: "Uttar Pradesh", Limit: 10})
	k3 := GenerateKey("districts", params{State: "Bihar", Limit: 10})
	k4 := GenerateKey("performance", params{State: "Uttar Pradesh", Limit: 10})

	if k1 != k2 {
		t.Error("identical params should generate identical keys")
	}
	if k1 == k3 {
		t.Error("different params should generate different keys")
	}
	if k1 == k4 {
		t.Error("different methods should generate different keys")
	}
	if !strings.HasPrefix(k1, "districts:") {
		t.Errorf("key %q should carry method prefix", k1)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(newMemStore(), time.Minute, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := GenerateKey("concurrent", n%5)
			for j := 0; j < 50; j++ {
				_ = c.Set(ctx, key, "directory", payload{Count: j})
				var got payload
				_, _ = c.Get(ctx, key, "directory", &got)
			}
		}(i)
	}
	wg.Wait()
}
