package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/db"
	"github.com/codr1/clubconnect/internal/invites"
)

const eventColumns = `id, title, event_type, event_date, start_time, location, clothing, description, created_at, updated_at`

type Store struct {
	q   db.DBTX
	now func() time.Time
	loc *time.Location
}

type Option func(*Store)

// WithClock overrides the clock used for timestamps and for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewStore(q db.DBTX, opts ...Option) *Store {
	s := &Store{
		q:   q,
		now: time.Now,
		loc: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// Create stores an already validated event.
func (s *Store) Create(ctx context.Context, in Input) (Event, error) {
	now := s.now().UTC()
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO events (title, event_type, event_date, start_time, location, clothing, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title,
		in.Type,
		in.Date,
		in.Time,
		nullString(in.Location),
		nullString(in.Clothing),
		nullString(in.Description),
		now,
		now,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Event{}, fmt.Errorf("event id: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (Event, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, fmt.Errorf("%w: %d", ErrEventNotFound, id)
		}
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	return db.Exists(ctx, s.q, "SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)", id)
}

// Update replaces every editable field of an already validated event.
func (s *Store) Update(ctx context.Context, id int64, in Input) (Event, error) {
	result, err := s.q.ExecContext(ctx,
		`UPDATE events
		SET title = ?, event_type = ?, event_date = ?, start_time = ?, location = ?, clothing = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		in.Title,
		in.Type,
		in.Date,
		in.Time,
		nullString(in.Location),
		nullString(in.Clothing),
		nullString(in.Description),
		s.now().UTC(),
		id,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return Event{}, fmt.Errorf("update event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Event{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Event{}, fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}
	return s.Get(ctx, id)
}

// ListUpcoming returns events dated today or later, soonest first. A limit of
// zero or less returns all of them.
func (s *Store) ListUpcoming(ctx context.Context, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE event_date >= ?
		ORDER BY event_date, start_time, id`
	args := []any{s.today()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.list(ctx, query, args...)
}

// CountUpcoming returns how many events are dated today or later.
func (s *Store) CountUpcoming(ctx context.Context) (int, error) {
	var count int
	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE event_date >= ?`, s.today()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count upcoming events: %w", err)
	}
	return count, nil
}

// Search returns upcoming events whose title, description or location
// contains query, ignoring case for any letter, not only ASCII. An empty
// query behaves like ListUpcoming.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListUpcoming(ctx, limit)
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	sqlQuery := `SELECT ` + eventColumns + `
		FROM events
		WHERE event_date >= ?
		AND (
			unicode_lower(title) LIKE ? ESCAPE '\'
			OR unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\'
			OR unicode_lower(COALESCE(location, '')) LIKE ? ESCAPE '\'
		)
		ORDER BY event_date, start_time, id`
	args := []any{s.today(), pattern, pattern, pattern}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.list(ctx, sqlQuery, args...)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) delete(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}
	return nil
}

// Delete removes the event and all of its invitations in one transaction.
func Delete(ctx context.Context, database *db.DB, id int64) error {
	return database.RunInTx(ctx, func(tx *db.DB) error {
		removed, err := invites.NewLedger(tx.Queries).DeleteForEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := NewStore(tx.Queries).delete(ctx, id); err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int64("event_id", id).
			Int64("invites_removed", removed).
			Msg("Event deleted")
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var event Event
	var eventType string
	var location, clothing, description sql.NullString
	err := row.Scan(
		&event.ID,
		&event.Title,
		&eventType,
		&event.Date,
		&event.Time,
		&location,
		&clothing,
		&description,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return Event{}, err
	}
	event.Type = Type(eventType)
	event.Location = location.String
	event.Clothing = clothing.String
	event.Description = description.String
	return event, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
