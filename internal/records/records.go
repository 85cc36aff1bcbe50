// internal/records/records.go
//
// Game history and lifetime statistics, persisted in SQLite.
// Every round gets a games row owned either by a user or by an anonymous
// cookie ID. Finishing a round owned by a user also bumps the counters on
// the users row inside the same transaction.

package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Owner identifies who played a round. Exactly one field is set.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) args() (any, any) {
	var user, anon any
	if o.UserID != "" {
		user = o.UserID
	} else {
		anon = o.AnonID
	}
	return user, anon
}

// Round is the row written when a round starts.
type Round struct {
	ID        string
	SessionID string
	Owner     Owner
	Mode      string
	StartedAt time.Time
}

// Result is what is known when a round ends.
type Result struct {
	ID         string
	Owner      Owner
	Won        bool
	Placements int
	Impossible int // unplaceable draw, 0 on a win
	FinishedAt time.Time
}

// GameRow is a history entry.
type GameRow struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	Placements int    `json:"placements"`
	Impossible int    `json:"impossible,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// StartRound inserts an in-progress games row.
func (s *Store) StartRound(ctx context.Context, r Round) error {
	user, anon := r.Owner.args()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, session_id, user_id, anonymous_id, mode, status, started_at)
		 VALUES (?,?,?,?,?,'in_progress',?)`,
		r.ID, r.SessionID, user, anon, r.Mode, r.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert game %s: %w", r.ID, err)
	}
	return nil
}

// RecordPlacement bumps the placement counter of an open round.
func (s *Store) RecordPlacement(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET placements = placements + 1 WHERE id=? AND status='in_progress'`, id)
	return err
}

// AbandonRound marks an open round that was replaced by a new one.
// Abandoned rounds do not count towards statistics.
func (s *Store) AbandonRound(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET status='abandoned' WHERE id=? AND status='in_progress'`, id)
	return err
}

// FinishRound closes a round and, for a signed-in owner, updates lifetime stats.
func (s *Store) FinishRound(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	status := "lost"
	var impossible any = r.Impossible
	if r.Won {
		status, impossible = "won", nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, placements=?, impossible=?, finished_at=? WHERE id=?`,
		status, r.Placements, impossible, r.FinishedAt.UTC().Format(time.RFC3339), r.ID); err != nil {
		return fmt.Errorf("finish game %s: %w", r.ID, err)
	}
	if r.Owner.UserID != "" {
		if err := bumpStats(ctx, tx, r.Owner.UserID, r.Won, r.Placements); err != nil {
			return fmt.Errorf("bump stats %s: %w", r.Owner.UserID, err)
		}
	}
	return tx.Commit()
}

// bumpStats increments games played and placements; updates wins, losses and streaks.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool, placements int) error {
	var gp, wins, losses, total, streak, best int
	row := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, losses, total_placements, streak, best_streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &losses, &total, &streak, &best); err != nil {
		return err
	}
	gp++
	total += placements
	if won {
		wins++
		streak++
		if streak > best {
			best = streak
		}
	} else {
		losses++
		streak = 0
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, wins=?, losses=?, total_placements=?, streak=?, best_streak=? WHERE id=?`,
		gp, wins, losses, total, streak, best, userID)
	return err
}

// RecentGames lists a user's latest rounds, newest first.
func (s *Store) RecentGames(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, status, placements, COALESCE(impossible, 0), started_at, COALESCE(finished_at, '')
		 FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Mode, &g.Status, &g.Placements, &g.Impossible, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonGames transfers anonymous rounds to a user account after auth.
func (s *Store) ClaimAnonGames(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
