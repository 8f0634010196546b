// Package players keeps the club roster.
package players

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	maxNameLength  = 100
	maxTeamLength  = 50
	maxEmailLength = 100
	maxPhoneLength = 20
	dateLayout     = "2006-01-02"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidPlayer  = errors.New("invalid player")
)

// Positions lists the accepted values for Player.Position. The empty string
// means no position was given.
var Positions = []string{"goalkeeper", "defender", "midfielder", "forward", "other"}

type Player struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Team         string    `json:"team,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	BirthDate    string    `json:"birthDate,omitempty"`
	Position     string    `json:"position,omitempty"`
	JerseyNumber *int64    `json:"jerseyNumber,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input carries the editable fields of a player.
type Input struct {
	Name         string `json:"name"`
	Team         string `json:"team"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BirthDate    string `json:"birthDate"`
	Position     string `json:"position"`
	JerseyNumber *int64 `json:"jerseyNumber"`
}

// Validate trims the input and checks it field by field. Phone numbers are
// parsed with region as the default country and returned in E.164 form.
// Errors match ErrInvalidPlayer.
func Validate(in Input, region string) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Team = strings.TrimSpace(in.Team)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Position = strings.ToLower(strings.TrimSpace(in.Position))

	if in.Name == "" {
		return Input{}, invalid("name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return Input{}, invalid("name must be at most %d characters", maxNameLength)
	}
	if utf8.RuneCountInString(in.Team) > maxTeamLength {
		return Input{}, invalid("team must be at most %d characters", maxTeamLength)
	}

	if in.Email != "" {
		if utf8.RuneCountInString(in.Email) > maxEmailLength {
			return Input{}, invalid("email must be at most %d characters", maxEmailLength)
		}
		addr, err := mail.ParseAddress(in.Email)
		if err != nil || addr.Address != in.Email {
			return Input{}, invalid("email must be a valid address")
		}
	}

	if in.Phone != "" {
		phone, err := normalizePhone(in.Phone, region)
		if err != nil {
			return Input{}, err
		}
		in.Phone = phone
	}

	if in.BirthDate != "" {
		if _, err := time.Parse(dateLayout, in.BirthDate); err != nil {
			return Input{}, invalid("birthDate must use YYYY-MM-DD")
		}
	}

	if in.Position != "" && !validPosition(in.Position) {
		return Input{}, invalid("position must be one of %s", strings.Join(Positions, ", "))
	}

	if in.JerseyNumber != nil && (*in.JerseyNumber < 1 || *in.JerseyNumber > 99) {
		return Input{}, invalid("jerseyNumber must be between 1 and 99")
	}

	return in, nil
}

func normalizePhone(raw, region string) (string, error) {
	if utf8.RuneCountInString(raw) > maxPhoneLength {
		return "", invalid("phone must be at most %d characters", maxPhoneLength)
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", invalid("phone must be a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validPosition(position string) bool {
	for _, p := range Positions {
		if p == position {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPlayer, fmt.Sprintf(format, args...))
}
