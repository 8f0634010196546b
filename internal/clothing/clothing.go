// Package clothing stores the dress code for each event type.
package clothing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codr1/clubconnect/internal/db"
	"github.com/codr1/clubconnect/internal/events"
)

const maxDescriptionLength = 1000

var (
	ErrRuleNotFound  = errors.New("clothing rule not found")
	ErrDuplicateRule = errors.New("clothing rule already exists")
	ErrInvalidRule   = errors.New("invalid clothing rule")
)

type Rule struct {
	ID          int64       `json:"id"`
	EventType   events.Type `json:"eventType"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Store keeps at most one rule per event type; the clothing_rules table
// enforces it with a UNIQUE constraint.
type Store struct {
	q   db.DBTX
	now func() time.Time
}

func NewStore(q db.DBTX) *Store {
	return &Store{q: q, now: time.Now}
}

func (s *Store) ForType(ctx context.Context, eventType events.Type) (Rule, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, event_type, description, created_at, updated_at
		FROM clothing_rules
		WHERE event_type = ?`,
		string(eventType),
	)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, eventType)
		}
		return Rule{}, fmt.Errorf("get clothing rule: %w", err)
	}
	return rule, nil
}

func (s *Store) List(ctx context.Context) ([]Rule, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, event_type, description, created_at, updated_at
		FROM clothing_rules
		ORDER BY event_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("list clothing rules: %w", err)
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clothing rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clothing rules: %w", err)
	}
	return rules, nil
}

// Create adds the rule for eventType and fails with ErrDuplicateRule when the
// type already has one.
func (s *Store) Create(ctx context.Context, eventType events.Type, description string) (Rule, error) {
	description, err := validate(eventType, description)
	if err != nil {
		return Rule{}, err
	}

	now := s.now().UTC()
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO clothing_rules (event_type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		string(eventType),
		description,
		now,
		now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Rule{}, fmt.Errorf("%w: %s", ErrDuplicateRule, eventType)
		}
		return Rule{}, fmt.Errorf("insert clothing rule: %w", err)
	}
	return s.ForType(ctx, eventType)
}

// Upsert sets the description for eventType, creating the rule if needed.
func (s *Store) Upsert(ctx context.Context, eventType events.Type, description string) (Rule, error) {
	description, err := validate(eventType, description)
	if err != nil {
		return Rule{}, err
	}

	now := s.now().UTC()
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO clothing_rules (event_type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_type) DO UPDATE SET
			description = excluded.description,
			updated_at = excluded.updated_at`,
		string(eventType),
		description,
		now,
		now,
	)
	if err != nil {
		return Rule{}, fmt.Errorf("upsert clothing rule: %w", err)
	}
	return s.ForType(ctx, eventType)
}

func (s *Store) Delete(ctx context.Context, eventType events.Type) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM clothing_rules WHERE event_type = ?`, string(eventType))
	if err != nil {
		return fmt.Errorf("delete clothing rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, eventType)
	}
	return nil
}

func validate(eventType events.Type, description string) (string, error) {
	if !eventType.Valid() {
		return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidRule, eventType)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: description is required", ErrInvalidRule)
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", fmt.Errorf("%w: description must be at most %d characters", ErrInvalidRule, maxDescriptionLength)
	}
	return description, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (Rule, error) {
	var rule Rule
	var eventType string
	if err := row.Scan(&rule.ID, &eventType, &rule.Description, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return Rule{}, err
	}
	rule.EventType = events.Type(eventType)
	return rule, nil
}
