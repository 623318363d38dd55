package store

import "github.com/jmoiron/sqlx"

// migrate runs all database migrations
func migrate(db *sqlx.DB) error {
	migrations := []string{
		// Roster
		`CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per athlete, day and shift. Check-in and check-out
		// submissions for the same identity are merged into it.
		`CREATE TABLE IF NOT EXISTS session_records (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			athlete_name TEXT NOT NULL DEFAULT '',
			session_date TEXT NOT NULL,
			shift INTEGER NOT NULL DEFAULT 0,
			recovery INTEGER,
			energy INTEGER,
			sleep INTEGER,
			stress INTEGER,
			pain INTEGER,
			pain_body_parts TEXT NOT NULL DEFAULT '[]',
			tactical_periodization INTEGER,
			in_menstrual_period INTEGER NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			session_minutes INTEGER,
			rpe INTEGER,
			internal_load REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (athlete_id, session_date, shift)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_session_records_date ON session_records(session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_session_records_athlete ON session_records(athlete_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
