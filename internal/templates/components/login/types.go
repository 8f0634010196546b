package login

import "github.com/codr1/clubconnect/internal/templates/layouts"

type Data struct {
	ClubName string
	Theme    layouts.Theme
	Username string
	Error    string
}
