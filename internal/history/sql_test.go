package history

import (
	"context"
	"database/sql"
	"testing"

	"rolechat/internal/config"
	"rolechat/internal/models"
	"rolechat/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: ":memory:"},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store, err := NewSQLStore(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLStore error: %v", err)
	}
	ctx := context.Background()

	m1 := models.NewMessage(models.SenderUser, "Hello")
	m2 := models.NewMessage(models.SenderBot, "Hi there!")
	for _, m := range []models.Message{m1, m2} {
		if err := store.Append(ctx, "alice", m); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	messages, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != m1.ID || messages[0].Text != "Hello" || messages[0].Sender != models.SenderUser {
		t.Fatalf("first message mismatch: %+v", messages[0])
	}
	if messages[1].ID != m2.ID || messages[1].Text != "Hi there!" || messages[1].Sender != models.SenderBot {
		t.Fatalf("second message mismatch: %+v", messages[1])
	}
}

func TestSQLStoreReadEmptyScope(t *testing.T) {
	store, err := NewSQLStore(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLStore error: %v", err)
	}
	messages, err := store.Read(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Read on fresh scope: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(messages))
	}
}

func TestSQLStoreClearScopedDelete(t *testing.T) {
	store, err := NewSQLStore(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLStore error: %v", err)
	}
	ctx := context.Background()

	if err := store.Append(ctx, "alice", models.NewMessage(models.SenderUser, "mine")); err != nil {
		t.Fatalf("append alice: %v", err)
	}
	if err := store.Append(ctx, "bob", models.NewMessage(models.SenderUser, "his")); err != nil {
		t.Fatalf("append bob: %v", err)
	}
	if err := store.Clear(ctx, "alice"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	aliceMsgs, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read alice: %v", err)
	}
	if len(aliceMsgs) != 0 {
		t.Fatalf("alice history not cleared: %+v", aliceMsgs)
	}
	bobMsgs, err := store.Read(ctx, "bob")
	if err != nil {
		t.Fatalf("read bob: %v", err)
	}
	if len(bobMsgs) != 1 {
		t.Fatalf("bob history should survive alice's clear, got %d entries", len(bobMsgs))
	}
}

func TestSQLStoreErrorFlagSurvives(t *testing.T) {
	store, err := NewSQLStore(openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLStore error: %v", err)
	}
	ctx := context.Background()

	if err := store.Append(ctx, "alice", models.NewErrorMessage("Service temporarily unavailable")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	messages, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(messages) != 1 || !messages[0].IsError || messages[0].Sender != models.SenderBot {
		t.Fatalf("error placeholder not preserved: %+v", messages)
	}
}
