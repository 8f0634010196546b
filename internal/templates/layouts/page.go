package layouts

import (
	"time"

	"github.com/codr1/clubconnect/internal/api/authz"
)

type PageData struct {
	Title    string
	ClubName string
	User     *authz.AuthUser
	Theme    Theme
}

func (p PageData) documentTitle() string {
	switch {
	case p.Title == "":
		return p.ClubName
	case p.ClubName == "":
		return p.Title
	default:
		return p.Title + " · " + p.ClubName
	}
}

// HumanDate turns a YYYY-MM-DD date into "Fri 16 Oct 2026". Unparseable
// input is returned unchanged.
func HumanDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Mon 2 Jan 2006")
}
