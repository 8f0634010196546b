package invites

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/codr1/clubconnect/internal/testutil"
)

func TestBulkInviteSkipsExistingInvites(t *testing.T) {
	database, ledger := newTestLedger(t)
	ctx := context.Background()
	eventID := testutil.InsertEvent(t, database, "Training", "2026-10-20", "18:00")
	p1 := testutil.InsertPlayer(t, database, "Anna")
	p2 := testutil.InsertPlayer(t, database, "Ben")
	p3 := testutil.InsertPlayer(t, database, "Carl")

	if _, err := ledger.Create(ctx, p2, eventID, StatusAccepted, ""); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	result, err := ledger.BulkInvite(ctx, eventID, []int64{p1, p2, p3})
	if err != nil {
		t.Fatalf("bulk invite: %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("created = %d, want 2", result.Created)
	}
	if !reflect.DeepEqual(result.AlreadyInvited, []int64{p2}) {
		t.Fatalf("already invited = %v, want [%d]", result.AlreadyInvited, p2)
	}

	invites, err := ledger.ListForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := make(map[int64]int)
	for _, invite := range invites {
		seen[invite.PlayerID]++
	}
	if len(seen) != 3 || seen[p1] != 1 || seen[p2] != 1 || seen[p3] != 1 {
		t.Fatalf("expected each player exactly once, got %v", seen)
	}

	existing, err := ledger.Get(ctx, p2, eventID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if existing.Status != StatusAccepted {
		t.Fatalf("bulk invite overwrote existing status: %s", existing.Status)
	}
}

func TestBulkInviteSkipsUnknownPlayers(t *testing.T) {
	database, ledger := newTestLedger(t)
	ctx := context.Background()
	eventID := testutil.InsertEvent(t, database, "Training", "2026-10-20", "18:00")
	p1 := testutil.InsertPlayer(t, database, "Anna")

	result, err := ledger.BulkInvite(ctx, eventID, []int64{p1, 4242})
	if err != nil {
		t.Fatalf("bulk invite: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("created = %d, want 1", result.Created)
	}
	if !reflect.DeepEqual(result.UnknownPlayers, []int64{4242}) {
		t.Fatalf("unknown players = %v", result.UnknownPlayers)
	}
}

func TestBulkInviteUnknownEventFailsWholeCall(t *testing.T) {
	database, ledger := newTestLedger(t)
	p1 := testutil.InsertPlayer(t, database, "Anna")

	result, err := ledger.BulkInvite(context.Background(), 777, []int64{p1})
	var refErr *ReferenceError
	if !errors.As(err, &refErr) || refErr.Entity != EntityEvent || refErr.ID != 777 {
		t.Fatalf("expected event reference error, got %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("created = %d, want 0", result.Created)
	}
}

func TestBulkInviteIgnoresRepeatedIDs(t *testing.T) {
	database, ledger := newTestLedger(t)
	eventID := testutil.InsertEvent(t, database, "Training", "2026-10-20", "18:00")
	p1 := testutil.InsertPlayer(t, database, "Anna")
	p2 := testutil.InsertPlayer(t, database, "Ben")

	result, err := ledger.BulkInvite(context.Background(), eventID, []int64{p2, p1, p2, p1})
	if err != nil {
		t.Fatalf("bulk invite: %v", err)
	}
	if result.Created != 2 || len(result.AlreadyInvited) != 0 {
		t.Fatalf("result = %+v, want 2 created and nothing skipped", result)
	}
}

func TestBulkInviteEmptyInput(t *testing.T) {
	database, ledger := newTestLedger(t)
	eventID := testutil.InsertEvent(t, database, "Training", "2026-10-20", "18:00")

	result, err := ledger.BulkInvite(context.Background(), eventID, nil)
	if err != nil {
		t.Fatalf("bulk invite: %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("created = %d, want 0", result.Created)
	}
}

func TestBulkInviteConcurrentOverlappingSets(t *testing.T) {
	database, ledger := newTestLedger(t)
	ctx := context.Background()
	eventID := testutil.InsertEvent(t, database, "Tournament", "2026-10-24", "09:00")

	var playerIDs []int64
	for _, name := range []string{"Anna", "Ben", "Carl", "Dana", "Emil", "Fiona"} {
		playerIDs = append(playerIDs, testutil.InsertPlayer(t, database, name))
	}
	batches := [][]int64{
		playerIDs[0:4],
		playerIDs[2:6],
		playerIDs[1:5],
		playerIDs,
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for _, batch := range batches {
		wg.Add(1)
		go func(batch []int64) {
			defer wg.Done()
			result, err := ledger.BulkInvite(ctx, eventID, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			created += result.Created
		}(batch)
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if created != len(playerIDs) {
		t.Fatalf("created across batches = %d, want %d", created, len(playerIDs))
	}

	stats, err := ledger.StatsForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != len(playerIDs) {
		t.Fatalf("stored invites = %d, want %d", stats.Total, len(playerIDs))
	}
}

func TestUniqueIDs(t *testing.T) {
	got := uniqueIDs([]int64{3, 1, 3, 2, 1})
	want := []int64{3, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("uniqueIDs = %v, want %v", got, want)
	}
}
