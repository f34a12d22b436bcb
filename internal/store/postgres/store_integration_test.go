package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"bizcard/internal/models"
	"bizcard/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests need a real database; set TEST_DATABASE_DSN to run them.
func setupTestStore(t *testing.T, ctx context.Context) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_ = db.Close()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `TRUNCATE users, texts, seo, images`)
		pool.Close()
	})
	return NewStore(pool)
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	created, err := st.CreateUser(ctx, "Admin@Example.com", "digest", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Lookup is case-insensitive because emails are stored lower-cased.
	found, err := st.GetUserByEmail(ctx, "admin@EXAMPLE.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found.UserID != created.UserID {
		t.Fatalf("expected user %s, got %s", created.UserID, found.UserID)
	}

	if _, err := st.CreateUser(ctx, "admin@example.com", "digest", models.RoleEditor); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := st.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	hasAdmin, err := st.HasAdmin(ctx)
	if err != nil || !hasAdmin {
		t.Fatalf("expected an admin to exist, got %v %v", hasAdmin, err)
	}
}

func TestFirstRegisteredUserIsAdmin(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	first, err := st.RegisterUser(ctx, "first@example.com", "digest")
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if first.Role != models.RoleAdmin {
		t.Fatalf("expected first user to be admin, got %s", first.Role)
	}

	second, err := st.RegisterUser(ctx, "second@example.com", "digest")
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.Role != models.RoleEditor {
		t.Fatalf("expected second user to be editor, got %s", second.Role)
	}

	if _, err := st.RegisterUser(ctx, "first@example.com", "digest"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestConcurrentRegistrationsYieldOneAdmin(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("racer%d@example.com", i)
			if _, err := st.RegisterUser(ctx, email, "digest"); err != nil {
				t.Errorf("register %s: %v", email, err)
			}
		}(i)
	}
	wg.Wait()

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	admins := 0
	for _, user := range users {
		if user.Role == models.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin, got %d of %d users", admins, len(users))
	}
}

func TestTextUpsert(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	text := models.Text{Page: "home", Key: "title", Lang: "en", Value: "first"}
	if err := st.UpsertText(ctx, text); err != nil {
		t.Fatalf("insert: %v", err)
	}
	text.Value = "second"
	if err := st.UpsertText(ctx, text); err != nil {
		t.Fatalf("update: %v", err)
	}

	value, err := st.GetText(ctx, "home", "title", "en")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "second" {
		t.Fatalf("expected upserted value, got %q", value)
	}

	missing, err := st.GetText(ctx, "home", "missing", "en")
	if err != nil || missing != "" {
		t.Fatalf("missing text should be empty, got %q %v", missing, err)
	}
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	for _, lang := range []string{"en", "ua"} {
		if err := st.UpsertText(ctx, models.Text{Page: "home", Key: "title", Lang: lang, Value: "x"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if _, err := st.CreateUser(ctx, "stats@example.com", "digest", models.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}

	stats, err := st.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TextsCount != 2 || stats.UsersCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.Languages) != 2 {
		t.Fatalf("expected two active languages, got %v", stats.Languages)
	}
}
