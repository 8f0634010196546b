package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codr1/clubconnect/internal/invites"
	"github.com/codr1/clubconnect/internal/testutil"
)

var fixedNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewStore(database.Queries, WithClock(func() time.Time { return fixedNow })), context.Background()
}

func TestStoreCreateGetUpdate(t *testing.T) {
	store, ctx := newTestStore(t)

	created, err := store.Create(ctx, Input{
		Title:    "Derby",
		Type:     "match",
		Date:     "2026-10-25",
		Time:     "15:00",
		Location: "Main pitch",
		Clothing: "match",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID <= 0 || created.Type != TypeMatch || created.Location != "Main pitch" {
		t.Fatalf("created event = %+v", created)
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Fatalf("created at = %v, want %v", created.CreatedAt, fixedNow)
	}

	updated, err := store.Update(ctx, created.ID, Input{
		Title: "Derby (moved)",
		Type:  "match",
		Date:  "2026-10-26",
		Time:  "14:00",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Date != "2026-10-26" || updated.Location != "" || updated.Clothing != "" {
		t.Fatalf("updated event = %+v", updated)
	}

	if _, err := store.Update(ctx, 999, validInput()); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, 999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestStoreCreateRejectsUnknownTypeAtStorage(t *testing.T) {
	store, ctx := newTestStore(t)

	in := validInput()
	in.Type = "party"
	if _, err := store.Create(ctx, in); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestListUpcoming(t *testing.T) {
	store, ctx := newTestStore(t)

	inputs := []Input{
		{Title: "Past", Type: "training", Date: "2026-10-15", Time: "18:00"},
		{Title: "Next week", Type: "match", Date: "2026-10-23", Time: "15:00"},
		{Title: "Today late", Type: "training", Date: "2026-10-16", Time: "19:00"},
		{Title: "Today early", Type: "meeting", Date: "2026-10-16", Time: "08:00"},
	}
	for _, in := range inputs {
		if _, err := store.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Title, err)
		}
	}

	upcoming, err := store.ListUpcoming(ctx, 0)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	want := []string{"Today early", "Today late", "Next week"}
	if len(upcoming) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(upcoming))
	}
	for i, event := range upcoming {
		if event.Title != want[i] {
			t.Fatalf("event %d = %q, want %q", i, event.Title, want[i])
		}
	}

	count, err := store.CountUpcoming(ctx)
	if err != nil {
		t.Fatalf("count upcoming: %v", err)
	}
	if count != len(want) {
		t.Fatalf("count upcoming = %d, want %d", count, len(want))
	}

	limited, err := store.ListUpcoming(ctx, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 events, got %d", len(limited))
	}
}

func TestSearch(t *testing.T) {
	store, ctx := newTestStore(t)

	inputs := []Input{
		{Title: "Goalkeeper training", Type: "training", Date: "2026-10-20", Time: "17:00"},
		{Title: "League match", Type: "match", Date: "2026-10-21", Time: "15:00", Location: "Stadium North"},
		{Title: "Season meeting", Type: "meeting", Date: "2026-10-22", Time: "19:00", Description: "Bring your TRAINING plan"},
		{Title: "Old training", Type: "training", Date: "2026-10-01", Time: "17:00"},
		{Title: "100% effort", Type: "other", Date: "2026-10-24", Time: "10:00"},
		{Title: "Übungsspiel", Type: "match", Date: "2026-10-25", Time: "11:00", Location: "Sportplatz Süd"},
	}
	for _, in := range inputs {
		if _, err := store.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Title, err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title_and_description", query: "training", want: []string{"Goalkeeper training", "Season meeting"}},
		{name: "location", query: "north", want: []string{"League match"}},
		{name: "percent_is_literal", query: "100%", want: []string{"100% effort"}},
		{name: "no_match", query: "zumba", want: nil},
		{name: "umlaut_lowercase", query: "übung", want: []string{"Übungsspiel"}},
		{name: "umlaut_uppercase", query: "ÜBUNG", want: []string{"Übungsspiel"}},
		{name: "umlaut_location", query: "SÜD", want: []string{"Übungsspiel"}},
		{name: "empty_is_upcoming", query: "  ", want: []string{"Goalkeeper training", "League match", "Season meeting", "100% effort", "Übungsspiel"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := store.Search(ctx, test.query, 0)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != len(test.want) {
				t.Fatalf("search %q returned %d events, want %d", test.query, len(got), len(test.want))
			}
			for i, event := range got {
				if event.Title != test.want[i] {
					t.Fatalf("result %d = %q, want %q", i, event.Title, test.want[i])
				}
			}
		})
	}
}

func TestDeleteRemovesInvites(t *testing.T) {
	database := testutil.NewTestDB(t)
	ledger := invites.NewLedger(database.Queries, invites.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	e1 := testutil.InsertEvent(t, database, "Training", "2026-10-20", "18:00")
	e2 := testutil.InsertEvent(t, database, "Match", "2026-10-21", "15:00")
	p1 := testutil.InsertPlayer(t, database, "Anna")
	p2 := testutil.InsertPlayer(t, database, "Ben")

	for _, pair := range [][2]int64{{p1, e1}, {p2, e1}, {p1, e2}} {
		if _, err := ledger.Create(ctx, pair[0], pair[1], invites.StatusPending, ""); err != nil {
			t.Fatalf("create invite: %v", err)
		}
	}

	if err := Delete(ctx, database, e1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := ledger.ListForEvent(ctx, e1)
	if err != nil {
		t.Fatalf("list for event: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no invites for deleted event, got %d", len(remaining))
	}

	forPlayer, err := ledger.ListForPlayer(ctx, p1, false)
	if err != nil {
		t.Fatalf("list for player: %v", err)
	}
	for _, invite := range forPlayer {
		if invite.EventID == e1 {
			t.Fatal("player still references deleted event")
		}
	}
	if len(forPlayer) != 1 {
		t.Fatalf("expected 1 remaining invite for player, got %d", len(forPlayer))
	}

	if err := Delete(ctx, database, e1); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound on second delete, got %v", err)
	}
}
