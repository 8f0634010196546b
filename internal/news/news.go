// Package news stores club announcements.
package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codr1/clubconnect/internal/db"
)

// PageSize is the number of published articles per page.
const PageSize = 10

const (
	defaultAuthor    = "Admin"
	maxTitleLength   = 200
	maxContentLength = 5000
	maxAuthorLength  = 100
)

const articleColumns = `id, title, content, author, published, created_at, updated_at`

var (
	ErrNewsNotFound = errors.New("news article not found")
	ErrInvalidNews  = errors.New("invalid news article")
)

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the editable fields. A nil Published means published.
type Input struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Published *bool  `json:"published"`
}

func Validate(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Author = strings.TrimSpace(in.Author)
	if in.Author == "" {
		in.Author = defaultAuthor
	}
	if in.Published == nil {
		on := true
		in.Published = &on
	}

	switch {
	case in.Title == "":
		return Input{}, fmt.Errorf("%w: title is required", ErrInvalidNews)
	case utf8.RuneCountInString(in.Title) > maxTitleLength:
		return Input{}, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidNews, maxTitleLength)
	case in.Content == "":
		return Input{}, fmt.Errorf("%w: content is required", ErrInvalidNews)
	case utf8.RuneCountInString(in.Content) > maxContentLength:
		return Input{}, fmt.Errorf("%w: content must be at most %d characters", ErrInvalidNews, maxContentLength)
	case utf8.RuneCountInString(in.Author) > maxAuthorLength:
		return Input{}, fmt.Errorf("%w: author must be at most %d characters", ErrInvalidNews, maxAuthorLength)
	}
	return in, nil
}

// Page describes one page of the published feed.
type Page struct {
	Number   int       `json:"page"`
	Articles []Article `json:"articles"`
	HasPrev  bool      `json:"hasPrev"`
	HasNext  bool      `json:"hasNext"`
}

type Store struct {
	q   db.DBTX
	now func() time.Time
}

func NewStore(q db.DBTX) *Store {
	return &Store{q: q, now: time.Now}
}

// Create stores an already validated article.
func (s *Store) Create(ctx context.Context, in Input) (Article, error) {
	now := s.now().UTC()
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO news (title, content, author, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title,
		in.Content,
		in.Author,
		published(in),
		now,
		now,
	)
	if err != nil {
		return Article{}, fmt.Errorf("insert news: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Article{}, fmt.Errorf("news id: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (Article, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM news WHERE id = ?`, id)
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Article{}, fmt.Errorf("%w: %d", ErrNewsNotFound, id)
		}
		return Article{}, fmt.Errorf("get news: %w", err)
	}
	return article, nil
}

// ListPublished returns published articles, newest first.
func (s *Store) ListPublished(ctx context.Context, limit, offset int) ([]Article, error) {
	return s.list(ctx,
		`SELECT `+articleColumns+`
		FROM news
		WHERE published = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
}

// ListAll returns every article including drafts, newest first.
func (s *Store) ListAll(ctx context.Context) ([]Article, error) {
	return s.list(ctx, `SELECT `+articleColumns+` FROM news ORDER BY created_at DESC, id DESC`)
}

// Recent returns the newest limit articles, drafts included.
func (s *Store) Recent(ctx context.Context, limit int) ([]Article, error) {
	return s.list(ctx,
		`SELECT `+articleColumns+` FROM news ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// PublishedPage loads page number (1-based) of the published feed.
func (s *Store) PublishedPage(ctx context.Context, number int) (Page, error) {
	if number < 1 {
		number = 1
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM news WHERE published = 1`).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count news: %w", err)
	}

	offset := (number - 1) * PageSize
	articles, err := s.ListPublished(ctx, PageSize, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Number:   number,
		Articles: articles,
		HasPrev:  number > 1,
		HasNext:  offset+len(articles) < total,
	}, nil
}

// Update replaces the article's fields.
func (s *Store) Update(ctx context.Context, id int64, in Input) (Article, error) {
	result, err := s.q.ExecContext(ctx,
		`UPDATE news SET title = ?, content = ?, author = ?, published = ?, updated_at = ? WHERE id = ?`,
		in.Title,
		in.Content,
		in.Author,
		published(in),
		s.now().UTC(),
		id,
	)
	if err != nil {
		return Article{}, fmt.Errorf("update news: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return Article{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return requireAffected(result, id)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	articles := make([]Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return articles, nil
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrNewsNotFound, id)
	}
	return nil
}

func published(in Input) bool {
	return in.Published == nil || *in.Published
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var article Article
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Author,
		&article.Published,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	return article, err
}
