package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rolechat/internal/config"
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

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID <= 0 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	loggedIn, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned wrong user: %+v", loggedIn)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if _, err := svc.Login(ctx, "nobody", "secret"); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestRegisterRejectsBlankCredentials(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	if _, err := svc.Register(context.Background(), "  ", "pw"); err == nil {
		t.Fatalf("expected error for blank username")
	}
	if _, err := svc.Register(context.Background(), "alice", ""); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestIssueValidateRevoke(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	userID, username, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if userID != user.ID || username != "alice" {
		t.Fatalf("ValidateToken returned id=%d username=%q", userID, username)
	}

	if err := svc.RevokeToken(ctx, token); err != nil {
		t.Fatalf("RevokeToken error: %v", err)
	}
	if _, _, err := svc.ValidateToken(ctx, token); err == nil {
		t.Fatalf("expected error after revoke")
	}

	token2, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if err := svc.RevokeUserTokens(ctx, user.ID); err != nil {
		t.Fatalf("RevokeUserTokens error: %v", err)
	}
	if _, _, err := svc.ValidateToken(ctx, token2); err == nil {
		t.Fatalf("expected error after revoke all")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, nil, 10*time.Millisecond)
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob", "secret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, _, err := svc.ValidateToken(ctx, token); err == nil {
		t.Fatalf("expected expiration error")
	}
	// ensure token removed
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_tokens WHERE token = ?`, token).Scan(&count); err != nil {
		t.Fatalf("query tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expired token not purged")
	}
}

func TestValidateEmptyToken(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	if _, _, err := svc.ValidateToken(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
