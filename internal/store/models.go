package store

import (
	"encoding/json"
	"fmt"
	"time"

	"squadload/internal/analysis"
)

const dateLayout = "2006-01-02"

// Athlete is a roster entry
type Athlete struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}

// sessionRow mirrors a session_records row
type sessionRow struct {
	ID                    string   `db:"id"`
	AthleteID             string   `db:"athlete_id"`
	AthleteName           string   `db:"athlete_name"`
	SessionDate           string   `db:"session_date"` // YYYY-MM-DD
	Shift                 int      `db:"shift"`
	Recovery              *int     `db:"recovery"`
	Energy                *int     `db:"energy"`
	Sleep                 *int     `db:"sleep"`
	Stress                *int     `db:"stress"`
	Pain                  *int     `db:"pain"`
	PainBodyParts         string   `db:"pain_body_parts"` // JSON array
	TacticalPeriodization *int     `db:"tactical_periodization"`
	InMenstrualPeriod     bool     `db:"in_menstrual_period"`
	Note                  string   `db:"note"`
	SessionMinutes        *int     `db:"session_minutes"`
	RPE                   *int     `db:"rpe"`
	InternalLoad          *float64 `db:"internal_load"`
}

const sessionColumns = `id, athlete_id, athlete_name, session_date, shift,
	recovery, energy, sleep, stress, pain, pain_body_parts,
	tactical_periodization, in_menstrual_period, note,
	session_minutes, rpe, internal_load`

func newSessionRow(id string, rec analysis.Record) (sessionRow, error) {
	parts := rec.PainBodyParts
	if parts == nil {
		parts = []string{}
	}
	encoded, err := json.Marshal(parts)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encoding body parts: %w", err)
	}
	return sessionRow{
		ID:                    id,
		AthleteID:             rec.AthleteID,
		AthleteName:           rec.AthleteName,
		SessionDate:           rec.SessionDate.Format(dateLayout),
		Shift:                 int(rec.Shift),
		Recovery:              rec.Recovery,
		Energy:                rec.Energy,
		Sleep:                 rec.Sleep,
		Stress:                rec.Stress,
		Pain:                  rec.Pain,
		PainBodyParts:         string(encoded),
		TacticalPeriodization: rec.TacticalPeriodization,
		InMenstrualPeriod:     rec.InMenstrualPeriod,
		Note:                  rec.Note,
		SessionMinutes:        rec.SessionMinutes,
		RPE:                   rec.RPE,
		InternalLoad:          rec.InternalLoad(),
	}, nil
}

func (r sessionRow) record() (analysis.Record, error) {
	date, err := time.Parse(dateLayout, r.SessionDate)
	if err != nil {
		return analysis.Record{}, fmt.Errorf("parsing session date %q: %w", r.SessionDate, err)
	}
	var parts []string
	if r.PainBodyParts != "" {
		if err := json.Unmarshal([]byte(r.PainBodyParts), &parts); err != nil {
			return analysis.Record{}, fmt.Errorf("parsing body parts: %w", err)
		}
	}
	if len(parts) == 0 {
		parts = nil
	}

	rec := analysis.Record{
		AthleteID:             r.AthleteID,
		AthleteName:           r.AthleteName,
		SessionDate:           date,
		Shift:                 analysis.Shift(r.Shift),
		Recovery:              r.Recovery,
		Energy:                r.Energy,
		Sleep:                 r.Sleep,
		Stress:                r.Stress,
		Pain:                  r.Pain,
		PainBodyParts:         parts,
		TacticalPeriodization: r.TacticalPeriodization,
		InMenstrualPeriod:     r.InMenstrualPeriod,
		Note:                  r.Note,
		SessionMinutes:        r.SessionMinutes,
		RPE:                   r.RPE,
	}
	return rec.WithReportedLoad(r.InternalLoad), nil
}

// recordLine is the JSONL shape of a record, using the canonical field names
// the normalizer reads back.
type recordLine struct {
	AthleteID             string   `json:"athlete_id"`
	AthleteName           string   `json:"athlete_name,omitempty"`
	SessionDate           string   `json:"session_date"`
	Shift                 string   `json:"shift,omitempty"`
	Recovery              *int     `json:"recovery,omitempty"`
	Energy                *int     `json:"energy,omitempty"`
	Sleep                 *int     `json:"sleep,omitempty"`
	Stress                *int     `json:"stress,omitempty"`
	Pain                  *int     `json:"pain,omitempty"`
	PainBodyParts         []string `json:"pain_body_parts,omitempty"`
	TacticalPeriodization *int     `json:"tactical_periodization,omitempty"`
	InMenstrualPeriod     bool     `json:"in_menstrual_period,omitempty"`
	Note                  string   `json:"free_text_note,omitempty"`
	SessionMinutes        *int     `json:"session_minutes,omitempty"`
	RPE                   *int     `json:"rpe,omitempty"`
	InternalLoad          *float64 `json:"internal_load,omitempty"`
}

func newRecordLine(rec analysis.Record) recordLine {
	return recordLine{
		AthleteID:             rec.AthleteID,
		AthleteName:           rec.AthleteName,
		SessionDate:           rec.SessionDate.Format(dateLayout),
		Shift:                 rec.Shift.String(),
		Recovery:              rec.Recovery,
		Energy:                rec.Energy,
		Sleep:                 rec.Sleep,
		Stress:                rec.Stress,
		Pain:                  rec.Pain,
		PainBodyParts:         rec.PainBodyParts,
		TacticalPeriodization: rec.TacticalPeriodization,
		InMenstrualPeriod:     rec.InMenstrualPeriod,
		Note:                  rec.Note,
		SessionMinutes:        rec.SessionMinutes,
		RPE:                   rec.RPE,
		InternalLoad:          rec.InternalLoad(),
	}
}
