// Package invites records which players are invited to which events and how
// they responded.
package invites

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusMaybe    Status = "maybe"
)

// Entity names used in ReferenceError.
const (
	EntityPlayer = "player"
	EntityEvent  = "event"
)

// MaxNotesLength is the longest note, in characters, an invitation may carry.
const MaxNotesLength = 500

var (
	ErrReference       = errors.New("referenced record does not exist")
	ErrDuplicateInvite = errors.New("invite already exists")
	ErrInvalidStatus   = errors.New("invalid invite status")
	ErrInvalidNotes    = errors.New("invalid invite notes")
	ErrInviteNotFound  = errors.New("invite not found")
)

func checkNotes(notes string) error {
	if n := utf8.RuneCountInString(notes); n > MaxNotesLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidNotes, n, MaxNotesLength)
	}
	return nil
}

// ReferenceError names the player or event an operation pointed at that does
// not exist. It matches ErrReference with errors.Is.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

func Statuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusDeclined, StatusMaybe}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusMaybe:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the four literal status values, ignoring surrounding
// whitespace and case.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

type Invite struct {
	ID          int64      `json:"id"`
	PlayerID    int64      `json:"playerId"`
	EventID     int64      `json:"eventId"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EventInvite is an invitation joined with the invited player's display data.
type EventInvite struct {
	Invite
	PlayerName  string `json:"playerName"`
	PlayerTeam  string `json:"playerTeam,omitempty"`
	PlayerEmail string `json:"playerEmail,omitempty"`
	PlayerPhone string `json:"playerPhone,omitempty"`
}

// PlayerInvite is an invitation joined with the event it refers to.
type PlayerInvite struct {
	Invite
	EventTitle    string `json:"eventTitle"`
	EventType     string `json:"eventType"`
	EventDate     string `json:"eventDate"`
	EventTime     string `json:"eventTime"`
	EventLocation string `json:"eventLocation,omitempty"`
}

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Maybe    int `json:"maybe"`
}

func (s *Stats) add(status Status, count int) {
	s.Total += count
	switch status {
	case StatusPending:
		s.Pending += count
	case StatusAccepted:
		s.Accepted += count
	case StatusDeclined:
		s.Declined += count
	case StatusMaybe:
		s.Maybe += count
	}
}

// PlayerSummary is the slice of roster data the invite screens need.
type PlayerSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Team string `json:"team,omitempty"`
}
