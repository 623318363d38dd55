package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrDuplicateIdentity is returned when two records resolve to the same
// (athlete, day, shift) identity without going through Merge.
var ErrDuplicateIdentity = errors.New("duplicate record identity")

// Shift identifies the training session within a day
type Shift int

const (
	ShiftUnknown Shift = iota
	Shift1
	Shift2
	Shift3
)

func (s Shift) String() string {
	switch s {
	case Shift1:
		return "Shift1"
	case Shift2:
		return "Shift2"
	case Shift3:
		return "Shift3"
	default:
		return ""
	}
}

// ParseShift accepts "1", "Shift1", "shift 2", "Turno 3", "T1" and friends.
// Anything unrecognized maps to ShiftUnknown, which still forms a valid identity.
func ParseShift(s string) Shift {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"shift", "turno", "t"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return ShiftUnknown
	}
	switch n {
	case 1:
		return Shift1
	case 2:
		return Shift2
	case 3:
		return Shift3
	default:
		return ShiftUnknown
	}
}

// Record is one athlete, one calendar day, one shift. Check-in fields are
// filled before training and check-out fields after; nil means not reported.
type Record struct {
	AthleteID   string
	AthleteName string
	SessionDate time.Time // date only, UTC midnight
	Shift       Shift

	// Check-in (each 1-5)
	Recovery              *int
	Energy                *int
	Sleep                 *int
	Stress                *int
	Pain                  *int
	PainBodyParts         []string
	TacticalPeriodization *int // days relative to matchday
	InMenstrualPeriod     bool
	Note                  string

	// Check-out
	SessionMinutes *int
	RPE            *int // 1-10

	// reportedLoad is only used for legacy rows that carry a load value but
	// not the minutes/RPE it was derived from.
	reportedLoad *float64
}

// Identity is the uniqueness key of a Record
type Identity struct {
	AthleteID string
	Day       string // YYYY-MM-DD
	Shift     Shift
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%d", id.AthleteID, id.Day, id.Shift)
}

// Identity returns the record's (athlete, day, shift) key
func (r Record) Identity() Identity {
	return Identity{
		AthleteID: r.AthleteID,
		Day:       dayKey(r.SessionDate),
		Shift:     r.Shift,
	}
}

// InternalLoad returns session minutes x RPE (UA), or nil when it cannot be derived
func (r Record) InternalLoad() *float64 {
	if r.SessionMinutes != nil && r.RPE != nil {
		ua := float64(*r.SessionMinutes) * float64(*r.RPE)
		return &ua
	}
	if r.reportedLoad != nil {
		ua := *r.reportedLoad
		return &ua
	}
	return nil
}

// WithReportedLoad returns a copy carrying a stored load value. It only
// takes effect when minutes or RPE are missing.
func (r Record) WithReportedLoad(ua *float64) Record {
	if ua == nil {
		r.reportedLoad = nil
		return r
	}
	v := *ua
	r.reportedLoad = &v
	return r
}

// Scores returns the five check-in values
func (r Record) Scores() Scores {
	return Scores{
		Recovery: r.Recovery,
		Energy:   r.Energy,
		Sleep:    r.Sleep,
		Stress:   r.Stress,
		Pain:     r.Pain,
	}
}

// HasCheckIn reports whether at least one wellness score is present
func (r Record) HasCheckIn() bool {
	return r.Recovery != nil || r.Energy != nil || r.Sleep != nil || r.Stress != nil || r.Pain != nil
}

// HasCheckOut reports whether any session load field is present
func (r Record) HasCheckOut() bool {
	return r.RPE != nil || r.SessionMinutes != nil || r.reportedLoad != nil
}

// Merge folds a newer submission for the same identity into r. Non-empty
// values from newer win; InMenstrualPeriod is only ever promoted to true.
func (r Record) Merge(newer Record) Record {
	out := r.clone()

	if newer.AthleteName != "" {
		out.AthleteName = newer.AthleteName
	}
	out.Recovery = preferInt(out.Recovery, newer.Recovery)
	out.Energy = preferInt(out.Energy, newer.Energy)
	out.Sleep = preferInt(out.Sleep, newer.Sleep)
	out.Stress = preferInt(out.Stress, newer.Stress)
	out.Pain = preferInt(out.Pain, newer.Pain)
	if len(newer.PainBodyParts) > 0 {
		out.PainBodyParts = append([]string(nil), newer.PainBodyParts...)
	}
	out.TacticalPeriodization = preferInt(out.TacticalPeriodization, newer.TacticalPeriodization)
	if newer.InMenstrualPeriod {
		out.InMenstrualPeriod = true
	}
	if newer.Note != "" {
		out.Note = newer.Note
	}

	out.SessionMinutes = preferInt(out.SessionMinutes, newer.SessionMinutes)
	out.RPE = preferInt(out.RPE, newer.RPE)
	if newer.reportedLoad != nil {
		v := *newer.reportedLoad
		out.reportedLoad = &v
	}

	return out
}

func (r Record) clone() Record {
	out := r
	out.Recovery = copyInt(r.Recovery)
	out.Energy = copyInt(r.Energy)
	out.Sleep = copyInt(r.Sleep)
	out.Stress = copyInt(r.Stress)
	out.Pain = copyInt(r.Pain)
	out.TacticalPeriodization = copyInt(r.TacticalPeriodization)
	out.SessionMinutes = copyInt(r.SessionMinutes)
	out.RPE = copyInt(r.RPE)
	if r.PainBodyParts != nil {
		out.PainBodyParts = append([]string(nil), r.PainBodyParts...)
	}
	if r.reportedLoad != nil {
		v := *r.reportedLoad
		out.reportedLoad = &v
	}
	return out
}

func preferInt(old, newer *int) *int {
	if newer != nil {
		return copyInt(newer)
	}
	return old
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DayOf truncates t to its calendar date (in t's own location) as UTC midnight
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
