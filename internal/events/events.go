// Package events keeps the club's calendar of trainings, matches and other
// appointments.
package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Type string

const (
	TypeTraining   Type = "training"
	TypeMatch      Type = "match"
	TypeTournament Type = "tournament"
	TypeMeeting    Type = "meeting"
	TypeOther      Type = "other"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	maxTitleLength       = 200
	maxLocationLength    = 200
	maxDescriptionLength = 1000
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// ClothingHints are the accepted values for Event.Clothing besides empty.
var ClothingHints = []string{"training", "match", "formal", "casual"}

func Types() []Type {
	return []Type{TypeTraining, TypeMatch, TypeTournament, TypeMeeting, TypeOther}
}

func (t Type) Valid() bool {
	switch t {
	case TypeTraining, TypeMatch, TypeTournament, TypeMeeting, TypeOther:
		return true
	default:
		return false
	}
}

// ParseType accepts the literal type values, ignoring surrounding whitespace
// and case.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, raw)
	}
	return t, nil
}

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        Type      `json:"type"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location,omitempty"`
	Clothing    string    `json:"clothing,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StartsAt combines the event's date and time in loc.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
}

type Input struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Clothing    string `json:"clothing"`
	Description string `json:"description"`
}

// Validate trims the input and checks every field. Errors match
// ErrInvalidEvent.
func Validate(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Location = strings.TrimSpace(in.Location)
	in.Clothing = strings.ToLower(strings.TrimSpace(in.Clothing))
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return Input{}, invalid("title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return Input{}, invalid("title must be at most %d characters", maxTitleLength)
	}
	if !Type(in.Type).Valid() {
		return Input{}, invalid("type must be one of training, match, tournament, meeting, other")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return Input{}, invalid("date must use YYYY-MM-DD")
	}
	if _, err := time.Parse(TimeLayout, in.Time); err != nil {
		return Input{}, invalid("time must use HH:MM")
	}
	if utf8.RuneCountInString(in.Location) > maxLocationLength {
		return Input{}, invalid("location must be at most %d characters", maxLocationLength)
	}
	if in.Clothing != "" && !validClothing(in.Clothing) {
		return Input{}, invalid("clothing must be one of %s", strings.Join(ClothingHints, ", "))
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return Input{}, invalid("description must be at most %d characters", maxDescriptionLength)
	}
	return in, nil
}

func validClothing(hint string) bool {
	for _, h := range ClothingHints {
		if h == hint {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}
