package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"squadload/internal/analysis"
)

// ErrInvalidSubmission wraps every validation failure of a check-in or check-out
var ErrInvalidSubmission = errors.New("invalid submission")

// CheckIn is the pre-training wellness form
type CheckIn struct {
	AthleteID             string   `json:"athlete_id"`
	AthleteName           string   `json:"athlete_name"`
	SessionDate           string   `json:"session_date"` // YYYY-MM-DD
	Shift                 string   `json:"shift"`
	Recovery              int      `json:"recovery"`
	Energy                int      `json:"energy"`
	Sleep                 int      `json:"sleep"`
	Stress                int      `json:"stress"`
	Pain                  int      `json:"pain"`
	PainBodyParts         []string `json:"pain_body_parts"`
	TacticalPeriodization *int     `json:"tactical_periodization"`
	InMenstrualPeriod     bool     `json:"in_menstrual_period"`
	Note                  string   `json:"free_text_note"`
}

// CheckOut is the post-training load form
type CheckOut struct {
	AthleteID      string `json:"athlete_id"`
	AthleteName    string `json:"athlete_name"`
	SessionDate    string `json:"session_date"`
	Shift          string `json:"shift"`
	SessionMinutes int    `json:"session_minutes"`
	RPE            int    `json:"rpe"`
}

// ValidateCheckIn checks every field and converts the form into a record.
// All problems are reported together.
func ValidateCheckIn(c CheckIn) (analysis.Record, error) {
	var errs error
	id, date, err := validateIdentity(c.AthleteID, c.SessionDate)
	errs = multierr.Append(errs, err)
	shift, err := validateShift(c.Shift)
	errs = multierr.Append(errs, err)

	scores := []struct {
		name  string
		value int
	}{
		{"recovery", c.Recovery},
		{"energy", c.Energy},
		{"sleep", c.Sleep},
		{"stress", c.Stress},
		{"pain", c.Pain},
	}
	for _, s := range scores {
		if s.value < MinScore || s.value > MaxScore {
			errs = multierr.Append(errs, fmt.Errorf("%s must be between %d and %d, got %d", s.name, MinScore, MaxScore, s.value))
		}
	}

	parts := cleanParts(c.PainBodyParts)
	if c.Pain > PainNeedsBodyPartsAbove && len(parts) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("pain_body_parts is required when pain is above %d", PainNeedsBodyPartsAbove))
	}
	if tp := c.TacticalPeriodization; tp != nil && (*tp < -MaxMatchdayOffset || *tp > MaxMatchdayOffset) {
		errs = multierr.Append(errs, fmt.Errorf("tactical_periodization must be within %d days of the match, got %d", MaxMatchdayOffset, *tp))
	}

	if errs != nil {
		return analysis.Record{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, errs)
	}

	rec := analysis.Record{
		AthleteID:             id,
		AthleteName:           strings.TrimSpace(c.AthleteName),
		SessionDate:           date,
		Shift:                 shift,
		Recovery:              intPtr(c.Recovery),
		Energy:                intPtr(c.Energy),
		Sleep:                 intPtr(c.Sleep),
		Stress:                intPtr(c.Stress),
		Pain:                  intPtr(c.Pain),
		PainBodyParts:         parts,
		TacticalPeriodization: c.TacticalPeriodization,
		InMenstrualPeriod:     c.InMenstrualPeriod,
		Note:                  strings.TrimSpace(c.Note),
	}
	return rec, nil
}

// ValidateCheckOut checks the form and converts it into a record whose
// internal load is minutes x RPE.
func ValidateCheckOut(c CheckOut) (analysis.Record, error) {
	var errs error
	id, date, err := validateIdentity(c.AthleteID, c.SessionDate)
	errs = multierr.Append(errs, err)
	shift, err := validateShift(c.Shift)
	errs = multierr.Append(errs, err)

	if c.SessionMinutes < 1 || c.SessionMinutes > MaxSessionMinutes {
		errs = multierr.Append(errs, fmt.Errorf("session_minutes must be between 1 and %d, got %d", MaxSessionMinutes, c.SessionMinutes))
	}
	if c.RPE < MinRPE || c.RPE > MaxRPE {
		errs = multierr.Append(errs, fmt.Errorf("rpe must be between %d and %d, got %d", MinRPE, MaxRPE, c.RPE))
	}

	if errs != nil {
		return analysis.Record{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, errs)
	}

	return analysis.Record{
		AthleteID:      id,
		AthleteName:    strings.TrimSpace(c.AthleteName),
		SessionDate:    date,
		Shift:          shift,
		SessionMinutes: intPtr(c.SessionMinutes),
		RPE:            intPtr(c.RPE),
	}, nil
}

// Problems lists the individual validation failures carried by err
func Problems(err error) []string {
	u, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []string
	for _, e := range u.Unwrap() {
		if e == ErrInvalidSubmission {
			continue
		}
		for _, p := range multierr.Errors(e) {
			out = append(out, p.Error())
		}
	}
	return out
}

func validateIdentity(athleteID, sessionDate string) (string, time.Time, error) {
	var errs error
	id := strings.TrimSpace(athleteID)
	if id == "" {
		errs = multierr.Append(errs, errors.New("athlete_id is required"))
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(sessionDate))
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("session_date must be YYYY-MM-DD, got %q", sessionDate))
	}
	return id, date, errs
}

// validateShift requires one of the three daily sessions. Unknown shifts
// would form an identity that never merges with the other form.
func validateShift(s string) (analysis.Shift, error) {
	shift := analysis.ParseShift(s)
	if shift == analysis.ShiftUnknown {
		return shift, fmt.Errorf("shift must be 1, 2 or 3, got %q", s)
	}
	return shift, nil
}

func cleanParts(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
