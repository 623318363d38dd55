package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"squadload/internal/analysis"
)

// UpsertResult reports what UpsertRecord did
type UpsertResult struct {
	Record  analysis.Record
	Created bool
}

// UpsertRecord stores rec, merging it into any existing record with the
// same (athlete, day, shift) identity.
func (s *Store) UpsertRecord(ctx context.Context, rec analysis.Record) (UpsertResult, error) {
	var res UpsertResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		res, err = upsertRecordTx(ctx, tx, rec)
		return err
	})
	return res, err
}

// InsertRecord stores rec as a new record. It fails with
// ErrDuplicateIdentity when the identity is already taken.
func (s *Store) InsertRecord(ctx context.Context, rec analysis.Record) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, found, err := getRowTx(ctx, tx, rec.Identity())
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentity, rec.Identity())
		}
		if err := upsertAthleteTx(ctx, tx, Athlete{ID: rec.AthleteID, Name: rec.AthleteName, Active: true}); err != nil {
			return err
		}
		return insertRowTx(ctx, tx, uuid.NewString(), rec)
	})
}

// GetRecord retrieves the record with the given identity
func (s *Store) GetRecord(ctx context.Context, id analysis.Identity) (analysis.Record, error) {
	row, found, err := getRowTx(ctx, s.db, id)
	if err != nil {
		return analysis.Record{}, err
	}
	if !found {
		return analysis.Record{}, ErrRecordNotFound
	}
	return row.record()
}

// RecordQuery narrows ListRecords. Zero values match everything; From and To
// are inclusive calendar days.
type RecordQuery struct {
	AthleteID string
	From      time.Time
	To        time.Time
}

// ListRecords returns records ordered by date, athlete and shift
func (s *Store) ListRecords(ctx context.Context, q RecordQuery) ([]analysis.Record, error) {
	var (
		where []string
		args  []any
	)
	if q.AthleteID != "" {
		where = append(where, "athlete_id = ?")
		args = append(args, q.AthleteID)
	}
	if !q.From.IsZero() {
		where = append(where, "session_date >= ?")
		args = append(args, q.From.Format(dateLayout))
	}
	if !q.To.IsZero() {
		where = append(where, "session_date <= ?")
		args = append(args, q.To.Format(dateLayout))
	}

	query := "SELECT " + sessionColumns + " FROM session_records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY session_date, athlete_id, shift"

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]analysis.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountRecords returns the number of stored records
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM session_records"); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Table loads every stored record as an analysis table
func (s *Store) Table(ctx context.Context) (*analysis.Table, error) {
	records, err := s.ListRecords(ctx, RecordQuery{})
	if err != nil {
		return nil, err
	}
	return analysis.NewTable(records)
}

func upsertRecordTx(ctx context.Context, tx *sqlx.Tx, rec analysis.Record) (UpsertResult, error) {
	existing, found, err := getRowTx(ctx, tx, rec.Identity())
	if err != nil {
		return UpsertResult{}, err
	}
	if err := upsertAthleteTx(ctx, tx, Athlete{ID: rec.AthleteID, Name: rec.AthleteName, Active: true}); err != nil {
		return UpsertResult{}, err
	}

	if !found {
		if err := insertRowTx(ctx, tx, uuid.NewString(), rec); err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{Record: rec, Created: true}, nil
	}

	old, err := existing.record()
	if err != nil {
		return UpsertResult{}, err
	}
	merged := old.Merge(rec)
	row, err := newSessionRow(existing.ID, merged)
	if err != nil {
		return UpsertResult{}, err
	}
	_, err = tx.NamedExecContext(ctx, `
		UPDATE session_records SET
			athlete_name = :athlete_name,
			recovery = :recovery,
			energy = :energy,
			sleep = :sleep,
			stress = :stress,
			pain = :pain,
			pain_body_parts = :pain_body_parts,
			tactical_periodization = :tactical_periodization,
			in_menstrual_period = :in_menstrual_period,
			note = :note,
			session_minutes = :session_minutes,
			rpe = :rpe,
			internal_load = :internal_load,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`, row)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("updating record %s: %w", rec.Identity(), err)
	}
	return UpsertResult{Record: merged}, nil
}

func insertRowTx(ctx context.Context, tx *sqlx.Tx, id string, rec analysis.Record) error {
	row, err := newSessionRow(id, rec)
	if err != nil {
		return err
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO session_records (`+sessionColumns+`)
		VALUES (:id, :athlete_id, :athlete_name, :session_date, :shift,
			:recovery, :energy, :sleep, :stress, :pain, :pain_body_parts,
			:tactical_periodization, :in_menstrual_period, :note,
			:session_minutes, :rpe, :internal_load)
	`, row)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.Identity(), err)
	}
	return nil
}

func getRowTx(ctx context.Context, q sqlx.QueryerContext, id analysis.Identity) (sessionRow, bool, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+sessionColumns+" FROM session_records WHERE athlete_id = ? AND session_date = ? AND shift = ?",
		id.AthleteID, id.Day, int(id.Shift))
	if errors.Is(err, sql.ErrNoRows) {
		return sessionRow{}, false, nil
	}
	if err != nil {
		return sessionRow{}, false, fmt.Errorf("getting record %s: %w", id, err)
	}
	return row, true, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds
func (s *Store) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
