package layouts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/codr1/clubconnect/internal/api/authz"
)

func TestThemeColorOrDefault(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"#123456", "#123456"},
		{" #abc ", "#abc"},
		{"red", "#000"},
		{"#12345g", "#000"},
		{"", "#000"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := themeColorOrDefault(tt.value, "#000"); got != tt.want {
				t.Fatalf("themeColorOrDefault(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestBaseRendersUserNav(t *testing.T) {
	body := templ.Raw("<p>content</p>")

	tests := []struct {
		name     string
		user     *authz.AuthUser
		contains []string
		absent   []string
	}{
		{
			name:     "anonymous",
			contains: []string{`href="/login"`, "<p>content</p>"},
			absent:   []string{"Sign out"},
		},
		{
			name:     "trainer",
			user:     &authz.AuthUser{ID: 1, Username: "coach", IsTrainer: true},
			contains: []string{"coach", "Trainer", `action="/logout"`},
			absent:   []string{`href="/login"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			page := PageData{Title: "Home", ClubName: "FC Test", User: tt.user}
			if err := Base(page, body).Render(context.Background(), &buf); err != nil {
				t.Fatalf("render: %v", err)
			}
			html := buf.String()
			if !strings.Contains(html, "<title>Home · FC Test</title>") {
				t.Fatalf("missing title: %s", html)
			}
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("expected %q in output", want)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(html, unwanted) {
					t.Errorf("unexpected %q in output", unwanted)
				}
			}
		})
	}
}

func TestBaseEscapesClubName(t *testing.T) {
	var buf bytes.Buffer
	page := PageData{ClubName: "Blau & Weiß <1904>"}
	if err := Base(page, templ.NopComponent).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<title>Blau &amp; Weiß &lt;1904&gt;</title>") {
		t.Fatalf("club name not escaped in title: %s", html)
	}
	if !strings.Contains(html, "--theme-primary:#1f5f3f") {
		t.Fatalf("expected default theme colours: %s", html)
	}
}

func TestHumanDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-10-16", "Fri 16 Oct 2026"},
		{"2027-01-01", "Fri 1 Jan 2027"},
		{"soon", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := HumanDate(tt.in); got != tt.want {
				t.Fatalf("HumanDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
