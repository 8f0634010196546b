package invites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codr1/clubconnect/internal/db"
)

const dateLayout = "2006-01-02"

const inviteColumns = `i.id, i.player_id, i.event_id, i.status, i.notes, i.responded_at, i.created_at, i.updated_at`

// Ledger is the durable record of invitations. Uniqueness per (player, event)
// is enforced by the invites table's UNIQUE constraint; the ledger never checks
// for an existing row before inserting.
type Ledger struct {
	q   db.DBTX
	now func() time.Time
	loc *time.Location
}

type Option func(*Ledger)

// WithClock overrides the clock used for timestamps and for "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func NewLedger(q db.DBTX, opts ...Option) *Ledger {
	l := &Ledger{
		q:   q,
		now: time.Now,
		loc: time.UTC,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) today() string {
	return l.now().In(l.loc).Format(dateLayout)
}

// Create inserts a new invitation. An empty status means pending.
// It fails with ErrInvalidStatus, a *ReferenceError when the player or event
// does not exist, or ErrDuplicateInvite when the pair is already invited.
func (l *Ledger) Create(ctx context.Context, playerID, eventID int64, status Status, notes string) (int64, error) {
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := checkNotes(notes); err != nil {
		return 0, err
	}

	now := l.now().UTC()
	result, err := l.q.ExecContext(ctx,
		`INSERT INTO invites (player_id, event_id, status, notes, responded_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playerID,
		eventID,
		string(status),
		nullString(notes),
		respondedAt(status, now),
		now,
		now,
	)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return 0, fmt.Errorf("%w: player %d, event %d", ErrDuplicateInvite, playerID, eventID)
		case db.IsForeignKeyViolation(err):
			return 0, l.missingReference(ctx, playerID, eventID)
		}
		return 0, fmt.Errorf("insert invite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("invite id: %w", err)
	}
	return id, nil
}

// missingReference works out which side of a failed insert was missing.
func (l *Ledger) missingReference(ctx context.Context, playerID, eventID int64) error {
	playerExists, err := l.playerExists(ctx, playerID)
	if err != nil {
		return fmt.Errorf("check player: %w", err)
	}
	if !playerExists {
		return &ReferenceError{Entity: EntityPlayer, ID: playerID}
	}

	eventExists, err := l.eventExists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !eventExists {
		return &ReferenceError{Entity: EntityEvent, ID: eventID}
	}

	// Both rows exist again, so one was removed and re-created concurrently.
	return fmt.Errorf("insert invite for player %d, event %d: %w", playerID, eventID, ErrReference)
}

func (l *Ledger) playerExists(ctx context.Context, playerID int64) (bool, error) {
	return db.Exists(ctx, l.q, "SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID)
}

func (l *Ledger) eventExists(ctx context.Context, eventID int64) (bool, error) {
	return db.Exists(ctx, l.q, "SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)", eventID)
}

// UpdateStatus overwrites the status and notes of an existing invitation.
// Any status may follow any other; the last write wins.
func (l *Ledger) UpdateStatus(ctx context.Context, playerID, eventID int64, status Status, notes string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := checkNotes(notes); err != nil {
		return err
	}

	now := l.now().UTC()
	result, err := l.q.ExecContext(ctx,
		`UPDATE invites
		SET status = ?, notes = ?, responded_at = ?, updated_at = ?
		WHERE player_id = ? AND event_id = ?`,
		string(status),
		nullString(notes),
		respondedAt(status, now),
		now,
		playerID,
		eventID,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		return fmt.Errorf("update invite status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invite status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: player %d, event %d", ErrInviteNotFound, playerID, eventID)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, playerID, eventID int64) (Invite, error) {
	row := l.q.QueryRowContext(ctx,
		`SELECT `+inviteColumns+`
		FROM invites i
		WHERE i.player_id = ? AND i.event_id = ?`,
		playerID,
		eventID,
	)

	var invite Invite
	if err := scanInvite(row, &invite); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Invite{}, fmt.Errorf("%w: player %d, event %d", ErrInviteNotFound, playerID, eventID)
		}
		return Invite{}, fmt.Errorf("get invite: %w", err)
	}
	return invite, nil
}

// ListForEvent returns the event's invitations ordered by player name.
func (l *Ledger) ListForEvent(ctx context.Context, eventID int64) ([]EventInvite, error) {
	rows, err := l.q.QueryContext(ctx,
		`SELECT `+inviteColumns+`, p.name, p.team, p.email, p.phone
		FROM invites i
		JOIN players p ON p.id = i.player_id
		WHERE i.event_id = ?
		ORDER BY p.name COLLATE NOCASE, p.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invites for event: %w", err)
	}
	defer rows.Close()

	invites := make([]EventInvite, 0)
	for rows.Next() {
		var (
			invite             EventInvite
			team, email, phone sql.NullString
		)
		if err := scanInvite(rows, &invite.Invite, &invite.PlayerName, &team, &email, &phone); err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invite.PlayerTeam = team.String
		invite.PlayerEmail = email.String
		invite.PlayerPhone = phone.String
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invites for event: %w", err)
	}
	return invites, nil
}

// ListForPlayer returns the player's invitations ordered by event date and
// time. With onlyFuture, events dated before today are left out.
func (l *Ledger) ListForPlayer(ctx context.Context, playerID int64, onlyFuture bool) ([]PlayerInvite, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + inviteColumns + `, e.title, e.event_type, e.event_date, e.start_time, e.location
		FROM invites i
		JOIN events e ON e.id = i.event_id
		WHERE i.player_id = ?`)
	args := []any{playerID}
	if onlyFuture {
		query.WriteString(` AND e.event_date >= ?`)
		args = append(args, l.today())
	}
	query.WriteString(` ORDER BY e.event_date, e.start_time, e.id`)

	rows, err := l.q.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list invites for player: %w", err)
	}
	defer rows.Close()

	invites := make([]PlayerInvite, 0)
	for rows.Next() {
		var (
			invite   PlayerInvite
			location sql.NullString
		)
		if err := scanInvite(rows, &invite.Invite,
			&invite.EventTitle, &invite.EventType, &invite.EventDate, &invite.EventTime, &location); err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invite.EventLocation = location.String
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invites for player: %w", err)
	}
	return invites, nil
}

// StatsForEvent counts the event's invitations per status.
func (l *Ledger) StatsForEvent(ctx context.Context, eventID int64) (Stats, error) {
	rows, err := l.q.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM invites WHERE event_id = ? GROUP BY status`,
		eventID,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("invite stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan invite stats: %w", err)
		}
		stats.add(Status(status), count)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("invite stats: %w", err)
	}
	return stats, nil
}

// UninvitedPlayers lists active players that have no invitation for the event.
func (l *Ledger) UninvitedPlayers(ctx context.Context, eventID int64) ([]PlayerSummary, error) {
	rows, err := l.q.QueryContext(ctx,
		`SELECT p.id, p.name, p.team
		FROM players p
		WHERE p.active = 1
		AND NOT EXISTS (SELECT 1 FROM invites i WHERE i.player_id = p.id AND i.event_id = ?)
		ORDER BY p.name COLLATE NOCASE, p.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list uninvited players: %w", err)
	}
	defer rows.Close()

	players := make([]PlayerSummary, 0)
	for rows.Next() {
		var (
			player PlayerSummary
			team   sql.NullString
		)
		if err := rows.Scan(&player.ID, &player.Name, &team); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		player.Team = team.String
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list uninvited players: %w", err)
	}
	return players, nil
}

// DeleteForEvent removes every invitation of the event. Deleting none is not
// an error.
func (l *Ledger) DeleteForEvent(ctx context.Context, eventID int64) (int64, error) {
	result, err := l.q.ExecContext(ctx, `DELETE FROM invites WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete invites for event: %w", err)
	}
	return result.RowsAffected()
}

// DeleteForPlayer removes every invitation of the player. Deleting none is not
// an error.
func (l *Ledger) DeleteForPlayer(ctx context.Context, playerID int64) (int64, error) {
	result, err := l.q.ExecContext(ctx, `DELETE FROM invites WHERE player_id = ?`, playerID)
	if err != nil {
		return 0, fmt.Errorf("delete invites for player: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvite(row rowScanner, invite *Invite, extra ...any) error {
	var (
		status    string
		notes     sql.NullString
		responded sql.NullTime
	)
	dest := []any{
		&invite.ID,
		&invite.PlayerID,
		&invite.EventID,
		&status,
		&notes,
		&responded,
		&invite.CreatedAt,
		&invite.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	invite.Status = Status(status)
	invite.Notes = notes.String
	if responded.Valid {
		t := responded.Time
		invite.RespondedAt = &t
	}
	return nil
}

func respondedAt(status Status, now time.Time) sql.NullTime {
	if status == StatusPending {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: now, Valid: true}
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
