package app

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestDeriveName(t *testing.T) {
	if got := DeriveName("billing", "p1"); got != "billing-p1" {
		t.Errorf("DeriveName() = %q, want billing-p1", got)
	}
}

func TestDeriveNameTruncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	got := DeriveName(long, "p1")
	if len(got) != MaxNameLength {
		t.Fatalf("len = %d, want %d", len(got), MaxNameLength)
	}
	if got != long[:MaxNameLength] {
		t.Errorf("DeriveName() = %q", got)
	}
}

func TestDeriveNameTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ü", 40)
	got := DeriveName(long, "p1")
	if !utf8.ValidString(got) {
		t.Fatalf("DeriveName() = %q is not valid UTF-8", got)
	}
	if n := utf8.RuneCountInString(got); n != MaxNameLength {
		t.Fatalf("rune count = %d, want %d", n, MaxNameLength)
	}
	if got != strings.Repeat("ü", MaxNameLength) {
		t.Errorf("DeriveName() = %q", got)
	}
}

func TestDefaultDescription(t *testing.T) {
	if got := DefaultDescription("p1"); got != "App for project p1" {
		t.Errorf("DefaultDescription() = %q", got)
	}
}

func TestNewViewMergesLocalAndRemote(t *testing.T) {
	now := time.Now().UTC()
	record := App{
		Name:        "billing-p1",
		ProjectID:   "p1",
		Description: "App for project p1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	remote := RemoteApp{
		Name:   "billing-p1",
		Config: map[string]string{"K": "v"},
	}

	view := NewView(record, remote)
	if view.Name != record.Name {
		t.Errorf("Name = %q", view.Name)
	}
	if view.Description != record.Description {
		t.Errorf("Description = %q", view.Description)
	}
	if view.Config["K"] != "v" {
		t.Errorf("Config = %v", view.Config)
	}
	if !view.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v", view.CreatedAt)
	}
}
