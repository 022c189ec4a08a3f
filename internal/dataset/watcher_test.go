package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maruel/recdb/internal/recordstore"
	"go.uber.org/goleak"
)

// replaceFile writes content next to path and renames it into place so the
// watcher never observes a partial file.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "records.jsonl")
	replaceFile(t, path, `{"id":"old","user":"u","timestamp":1,"karma":1}`+"\n")
	s, _, err := Build(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	target := recordstore.NewSynced(s)

	w := NewWatcher(path, target, 0)
	reloads := make(chan Stats, 16)
	w.OnReload = func(st Stats, err error) {
		if err == nil {
			reloads <- st
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.started:
	case err := <-done:
		cancel()
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher did not start")
	}

	replaceFile(t, path, `{"id":"a","user":"u","timestamp":1,"karma":1}`+"\n"+`{"id":"b","user":"u","timestamp":2,"karma":2}`+"\n")

	deadline := time.After(5 * time.Second)
	for loaded := false; !loaded; {
		select {
		case st := <-reloads:
			loaded = st.Loaded == 2
		case <-deadline:
			cancel()
			<-done
			t.Fatal("store was not reloaded")
		}
	}

	if _, ok := target.GetByID("old"); ok {
		t.Error("GetByID(old) found after reload")
	}
	n := 0
	target.AllByUser("u", recordstore.Count(&n))
	if n != 2 {
		t.Errorf("AllByUser(u) visited %d, want 2", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "records.jsonl"), recordstore.NewSynced(nil), time.Second)
	if err := w.Run(context.Background()); err == nil {
		t.Error("Run() on missing directory = nil error")
	}
}

func TestWatcherRestart(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "records.jsonl")
	replaceFile(t, path, `{"id":"a","user":"u","timestamp":1,"karma":1}`+"\n")
	w := NewWatcher(path, recordstore.NewSynced(nil), 0)
	for i := range 2 {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		select {
		case <-w.started:
		case <-time.After(5 * time.Second):
			cancel()
			t.Fatalf("run %d: watcher did not start", i)
		}
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run %d: Run() = %v, want nil", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("run %d: Run did not return after cancel", i)
		}
	}
}
