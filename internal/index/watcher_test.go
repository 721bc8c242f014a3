package index

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) record(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *eventRecorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatch_CreateAndDelete(t *testing.T) {
	db := testDB(t)
	vaultDir, store := testVault(t)
	det := testDetector()
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, det, vaultDir, slog.Default(), rec.record)
	}()
	t.Cleanup(func() { cancel(); <-done })

	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	if err := store.Write("2025-06-10.md", []byte("# today")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		n, _ := db.Get("2025-06-10.md")
		return n != nil
	}, "created note never indexed")
	waitFor(t, func() bool { return rec.has("created:2025-06-10.md") }, "no created event")

	if err := store.Delete("2025-06-10.md"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		n, _ := db.Get("2025-06-10.md")
		return n == nil
	}, "deleted note still indexed")
	waitFor(t, func() bool { return rec.has("deleted:2025-06-10.md") }, "no deleted event")
}

func TestWatch_IgnoresNonPeriodic(t *testing.T) {
	db := testDB(t)
	vaultDir, store := testVault(t)
	det := testDetector()
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, det, vaultDir, slog.Default(), rec.record)
	}()
	t.Cleanup(func() { cancel(); <-done })

	time.Sleep(100 * time.Millisecond)

	if err := store.Write("notes.md", []byte("# scratch")); err != nil {
		t.Fatal(err)
	}
	// Let the event settle, then confirm no row and no event.
	time.Sleep(300 * time.Millisecond)
	if n, _ := db.Get("notes.md"); n != nil {
		t.Errorf("non-periodic note indexed: %+v", n)
	}
	if rec.has("created:notes.md") {
		t.Error("unexpected event for non-periodic note")
	}
}
