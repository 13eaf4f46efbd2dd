package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/cmdhema/picasso/internal/app/domain/app"
	"github.com/cmdhema/picasso/internal/app/storage"
)

func TestCreateAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateApp(ctx, app.App{Name: "billing-p1", ProjectID: "p1", Description: "App for project p1"})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := store.GetApp(ctx, "p1", "billing-p1")
	if err != nil {
		t.Fatalf("get app: %v", err)
	}
	if got.Description != "App for project p1" {
		t.Fatalf("description = %q", got.Description)
	}
}

func TestCreateDuplicateReturnsErrAppExists(t *testing.T) {
	store := New()
	ctx := context.Background()

	record := app.App{Name: "billing-p1", ProjectID: "p1"}
	if _, err := store.CreateApp(ctx, record); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := store.CreateApp(ctx, record); !errors.Is(err, storage.ErrAppExists) {
		t.Fatalf("second create err = %v, want ErrAppExists", err)
	}
}

func TestSameNameDifferentProject(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateApp(ctx, app.App{Name: "billing", ProjectID: "p1"}); err != nil {
		t.Fatalf("create p1: %v", err)
	}
	if _, err := store.CreateApp(ctx, app.App{Name: "billing", ProjectID: "p2"}); err != nil {
		t.Fatalf("create p2: %v", err)
	}
}

func TestListScopedByProject(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, name := range []string{"a-p1", "b-p1"} {
		if _, err := store.CreateApp(ctx, app.App{Name: name, ProjectID: "p1"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if _, err := store.CreateApp(ctx, app.App{Name: "c-p2", ProjectID: "p2"}); err != nil {
		t.Fatalf("create c-p2: %v", err)
	}

	apps, err := store.ListApps(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len = %d, want 2", len(apps))
	}
	if apps[0].Name != "a-p1" || apps[1].Name != "b-p1" {
		t.Fatalf("insertion order not preserved: %+v", apps)
	}

	all, err := store.ListApps(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len all = %d, want 3", len(all))
	}
}

func TestDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateApp(ctx, app.App{Name: "billing-p1", ProjectID: "p1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DeleteApp(ctx, "p1", "billing-p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetApp(ctx, "p1", "billing-p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteApp(ctx, "p1", "billing-p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
