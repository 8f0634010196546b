package users

import (
	"context"
	"errors"
	"testing"

	"github.com/codr1/clubconnect/internal/testutil"
)

func TestCreateAndLookup(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewStore(database.Queries)
	ctx := context.Background()

	created, err := store.Create(ctx, "  Coach ", "hash", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Username != "coach" || !created.IsTrainer || !created.Active {
		t.Fatalf("created = %+v", created)
	}

	byName, err := store.GetByUsername(ctx, "COACH")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID || byName.PasswordHash != "hash" {
		t.Fatalf("get by username = %+v", byName)
	}

	if _, err := store.Create(ctx, "coach", "other", false); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestInactiveUserCannotBeFoundByUsername(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewStore(database.Queries)
	ctx := context.Background()

	created, err := store.Create(ctx, "retired", "hash", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetActive(ctx, created.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := store.GetByUsername(ctx, "retired"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	byID, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Active {
		t.Fatal("expected inactive user")
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trim_and_lower", input: " Trainer1 ", want: "trainer1"},
		{name: "too_short", input: "ab", wantErr: true},
		{name: "too_long", input: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NormalizeUsername(test.input)
			if test.wantErr {
				if !errors.Is(err, ErrInvalidUsername) {
					t.Fatalf("expected ErrInvalidUsername, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Fatalf("NormalizeUsername(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestGetByIDMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewStore(database.Queries)

	if _, err := store.GetByID(context.Background(), 42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := store.SetActive(context.Background(), 42, true); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
