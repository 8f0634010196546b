package home

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/clubconnect/internal/events"
	"github.com/codr1/clubconnect/internal/news"
)

type Data struct {
	Events []events.Event
	Query  string
	News   news.Page
}

func emptyMessage(query string) string {
	if query != "" {
		return fmt.Sprintf("No upcoming events match %q.", query)
	}
	return "No upcoming events."
}

func eventURL(id int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/events/%d", id))
}

func pageURL(number int) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/?page=%d#news", number))
}

func byline(article news.Article) string {
	return fmt.Sprintf("%s, %s", article.Author, article.CreatedAt.Format("2 Jan 2006"))
}

// paragraphs splits article content on blank lines, dropping empty ones.
func paragraphs(content string) []string {
	var out []string
	for _, paragraph := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		out = append(out, paragraph)
	}
	return out
}
