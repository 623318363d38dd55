package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UpsertAthlete adds an athlete to the roster or updates its name and
// active flag. An empty name never overwrites a known one.
func (s *Store) UpsertAthlete(ctx context.Context, a Athlete) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return upsertAthleteTx(ctx, tx, a)
	})
}

// ListAthletes returns the roster ordered by name
func (s *Store) ListAthletes(ctx context.Context) ([]Athlete, error) {
	var athletes []Athlete
	err := s.db.SelectContext(ctx, &athletes, `
		SELECT id, name, active
		FROM athletes
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing athletes: %w", err)
	}
	return athletes, nil
}

func upsertAthleteTx(ctx context.Context, tx *sqlx.Tx, a Athlete) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO athletes (id, name, active, updated_at)
		VALUES (:id, :name, :active, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN athletes.name ELSE excluded.name END,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`, a)
	if err != nil {
		return fmt.Errorf("upserting athlete %s: %w", a.ID, err)
	}
	return nil
}
