package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/cmdhema/picasso/internal/app/domain/app"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/cmdhema/picasso/internal/platform/migrations"
	_ "github.com/lib/pq"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	record := app.App{Name: "it-billing-p1", ProjectID: "it-p1", Description: "App for project it-p1"}
	created, err := store.CreateApp(ctx, record)
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	t.Cleanup(func() { _ = store.DeleteApp(ctx, "it-p1", "it-billing-p1") })

	if _, err := store.CreateApp(ctx, record); !errors.Is(err, storage.ErrAppExists) {
		t.Fatalf("duplicate create err = %v, want ErrAppExists", err)
	}

	got, err := store.GetApp(ctx, "it-p1", "it-billing-p1")
	if err != nil {
		t.Fatalf("get app: %v", err)
	}
	if got.ID != created.ID || got.Description != record.Description {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	apps, err := store.ListApps(ctx, "it-p1")
	if err != nil {
		t.Fatalf("list apps: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("list len = %d, want 1", len(apps))
	}

	if err := store.DeleteApp(ctx, "it-p1", "it-billing-p1"); err != nil {
		t.Fatalf("delete app: %v", err)
	}
	if _, err := store.GetApp(ctx, "it-p1", "it-billing-p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}
