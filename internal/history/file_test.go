package history

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rolechat/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	return store
}

func TestFileStoreReadEmptyScope(t *testing.T) {
	store := newTestFileStore(t)
	messages, err := store.Read(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Read on fresh scope: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(messages))
	}
}

func TestFileStoreAppendReadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	m1 := models.NewMessage(models.SenderUser, "Hello")
	m2 := models.NewMessage(models.SenderBot, "Hi there!")
	m3 := models.NewErrorMessage("Failed to get response from AI")
	for _, m := range []models.Message{m1, m2, m3} {
		if err := store.Append(ctx, "alice", m); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	messages, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	want := []models.Message{m1, m2, m3}
	for i, got := range messages {
		if got.ID != want[i].ID || got.Sender != want[i].Sender || got.Text != want[i].Text || got.IsError != want[i].IsError {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, got, want[i])
		}
		if !got.Timestamp.Equal(want[i].Timestamp) {
			t.Fatalf("message %d timestamp mismatch: got %v want %v", i, got.Timestamp, want[i].Timestamp)
		}
	}
}

func TestFileStoreSequentialAppendsKeepBoth(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "bob", models.NewMessage(models.SenderUser, "question")); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.Append(ctx, "bob", models.NewMessage(models.SenderBot, "answer")); err != nil {
		t.Fatalf("second append: %v", err)
	}

	messages, err := store.Read(ctx, "bob")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Sender != models.SenderUser || messages[1].Sender != models.SenderBot {
		t.Fatalf("messages out of order: %v then %v", messages[0].Sender, messages[1].Sender)
	}
}

func TestFileStoreScopesDoNotInterfere(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "alice", models.NewMessage(models.SenderUser, "for alice")); err != nil {
		t.Fatalf("append alice: %v", err)
	}
	if err := store.Append(ctx, "bob", models.NewMessage(models.SenderUser, "for bob")); err != nil {
		t.Fatalf("append bob: %v", err)
	}

	aliceMsgs, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read alice: %v", err)
	}
	if len(aliceMsgs) != 1 || aliceMsgs[0].Text != "for alice" {
		t.Fatalf("alice history polluted: %+v", aliceMsgs)
	}
}

func TestFileStoreConcurrentAppendsSameScope(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := store.Append(ctx, "busy", models.NewMessage(models.SenderUser, "x")); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	messages, err := store.Read(ctx, "busy")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != n {
		t.Fatalf("lost updates: expected %d messages, got %d", n, len(messages))
	}
}

func TestFileStoreSanitizesScopePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	ctx := context.Background()

	if err := store.Append(ctx, "../escape", models.NewMessage(models.SenderUser, "gotcha")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	// Nothing may land outside the history directory.
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json")); !os.IsNotExist(err) {
		t.Fatalf("scope escaped the history directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read history dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one record file, got %d", len(entries))
	}

	messages, err := store.Read(ctx, "../escape")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "gotcha" {
		t.Fatalf("sanitized scope did not round-trip: %+v", messages)
	}
}

func TestFileStoreClear(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	if err := store.Clear(ctx, "ghost"); err != nil {
		t.Fatalf("Clear on fresh scope: %v", err)
	}

	if err := store.Append(ctx, "carol", models.NewMessage(models.SenderUser, "hello")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Clear(ctx, "carol"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	messages, err := store.Read(ctx, "carol")
	if err != nil {
		t.Fatalf("Read after clear: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(messages))
	}
}
