package players

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

const playerColumns = `id, name, team, email, phone, birth_date, position, jersey_number, active, created_at, updated_at`

type Store struct {
	q   db.DBTX
	now func() time.Time
}

func NewStore(q db.DBTX) *Store {
	return &Store{q: q, now: time.Now}
}

// Create stores an already validated player as active.
func (s *Store) Create(ctx context.Context, in Input) (Player, error) {
	now := s.now().UTC()
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO players (name, team, email, phone, birth_date, position, jersey_number, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		in.Name,
		nullString(in.Team),
		nullString(in.Email),
		nullString(in.Phone),
		nullString(in.BirthDate),
		nullString(in.Position),
		nullInt64(in.JerseyNumber),
		now,
		now,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return Player{}, fmt.Errorf("%w: %v", ErrInvalidPlayer, err)
		}
		return Player{}, fmt.Errorf("insert player: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Player{}, fmt.Errorf("player id: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (Player, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
		}
		return Player{}, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	return db.Exists(ctx, s.q, "SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", id)
}

// List returns the roster ordered by name. With onlyActive, deactivated
// players are left out.
func (s *Store) List(ctx context.Context, onlyActive bool) ([]Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := make([]Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// Counts returns the size of the roster and how many of those players are
// active.
func (s *Store) Counts(ctx context.Context) (total, active int, err error) {
	err = s.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(active), 0) FROM players`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count players: %w", err)
	}
	return total, active, nil
}

// Update replaces the editable fields of an already validated player.
func (s *Store) Update(ctx context.Context, id int64, in Input) (Player, error) {
	result, err := s.q.ExecContext(ctx,
		`UPDATE players
		SET name = ?, team = ?, email = ?, phone = ?, birth_date = ?, position = ?, jersey_number = ?, updated_at = ?
		WHERE id = ?`,
		in.Name,
		nullString(in.Team),
		nullString(in.Email),
		nullString(in.Phone),
		nullString(in.BirthDate),
		nullString(in.Position),
		nullInt64(in.JerseyNumber),
		s.now().UTC(),
		id,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return Player{}, fmt.Errorf("%w: %v", ErrInvalidPlayer, err)
		}
		return Player{}, fmt.Errorf("update player: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return Player{}, err
	}
	return s.Get(ctx, id)
}

// SetActive toggles soft deactivation. Invitations are left alone.
func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE players SET active = ?, updated_at = ? WHERE id = ?`,
		active,
		s.now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set player active: %w", err)
	}
	return requireAffected(result, id)
}

func (s *Store) delete(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireAffected(result, id)
}

// Delete removes the player and all of its invitations in one transaction.
func Delete(ctx context.Context, database *db.DB, id int64) error {
	return database.RunInTx(ctx, func(tx *db.DB) error {
		removed, err := invites.NewLedger(tx.Queries).DeleteForPlayer(ctx, id)
		if err != nil {
			return err
		}
		if err := NewStore(tx.Queries).delete(ctx, id); err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int64("player_id", id).
			Int64("invites_removed", removed).
			Msg("Player deleted")
		return nil
	})
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (Player, error) {
	var player Player
	var team, email, phone, birthDate, position sql.NullString
	var jerseyNumber sql.NullInt64
	err := row.Scan(
		&player.ID,
		&player.Name,
		&team,
		&email,
		&phone,
		&birthDate,
		&position,
		&jerseyNumber,
		&player.Active,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return Player{}, err
	}
	player.Team = team.String
	player.Email = email.String
	player.Phone = phone.String
	player.BirthDate = birthDate.String
	player.Position = position.String
	if jerseyNumber.Valid {
		n := jerseyNumber.Int64
		player.JerseyNumber = &n
	}
	return player, nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
