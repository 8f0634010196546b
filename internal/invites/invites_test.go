package invites

import (
	"errors"
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Status
		wantErr bool
	}{
		{name: "pending", raw: "pending", want: StatusPending},
		{name: "accepted", raw: "accepted", want: StatusAccepted},
		{name: "declined", raw: "declined", want: StatusDeclined},
		{name: "maybe", raw: "maybe", want: StatusMaybe},
		{name: "mixed_case_and_space", raw: "  Accepted ", want: StatusAccepted},
		{name: "empty", raw: "", wantErr: true},
		{name: "legacy_confirmed", raw: "confirmed", wantErr: true},
		{name: "bogus", raw: "bogus", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseStatus(test.raw)
			if test.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("ParseStatus(%q) error = %v, want ErrInvalidStatus", test.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) unexpected error: %v", test.raw, err)
			}
			if got != test.want {
				t.Fatalf("ParseStatus(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestReferenceErrorMatchesSentinel(t *testing.T) {
	err := error(&ReferenceError{Entity: EntityPlayer, ID: 7})
	if !errors.Is(err, ErrReference) {
		t.Fatal("expected ReferenceError to match ErrReference")
	}
	if errors.Is(err, ErrDuplicateInvite) {
		t.Fatal("ReferenceError must not match ErrDuplicateInvite")
	}
	if err.Error() != "player 7 does not exist" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestStatsAdd(t *testing.T) {
	var stats Stats
	for _, status := range Statuses() {
		stats.add(status, 2)
	}
	stats.add(Status("unknown"), 1)

	want := Stats{Total: 9, Pending: 2, Accepted: 2, Declined: 2, Maybe: 2}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestCheckNotes(t *testing.T) {
	if err := checkNotes(strings.Repeat("ü", MaxNotesLength)); err != nil {
		t.Fatalf("notes at the limit should pass, got %v", err)
	}
	if err := checkNotes(strings.Repeat("a", MaxNotesLength+1)); !errors.Is(err, ErrInvalidNotes) {
		t.Fatalf("expected ErrInvalidNotes, got %v", err)
	}
}
