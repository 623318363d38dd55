package analysis

import (
	"sort"
	"time"
)

// Scores are the five 1-5 check-in values; nil means not reported
type Scores struct {
	Recovery *int
	Energy   *int
	Sleep    *int
	Stress   *int
	Pain     *int
}

// Complete reports whether all five scores are present
func (s Scores) Complete() bool {
	return s.Recovery != nil && s.Energy != nil && s.Sleep != nil && s.Stress != nil && s.Pain != nil
}

// ICSClass is the traffic-light reading of one day's check-in
type ICSClass int

const (
	ICSUnknown ICSClass = iota
	ICSGreen
	ICSYellow
	ICSRed
)

func (c ICSClass) String() string {
	switch c {
	case ICSGreen:
		return "GREEN"
	case ICSYellow:
		return "YELLOW"
	case ICSRed:
		return "RED"
	default:
		return "UNKNOWN"
	}
}

// Severity orders classes for display, RED first. ICSClass values already
// sort that way, this just names the intent.
func (c ICSClass) Severity() int {
	return int(c)
}

// scoreColor categorizes a single 1-5 value
func scoreColor(v int) ICSClass {
	switch {
	case v <= 2:
		return ICSGreen
	case v == 3:
		return ICSYellow
	default:
		return ICSRed
	}
}

// ClassifyICS applies the first matching rule:
//
//	any red                          -> RED
//	three or more yellows            -> RED
//	two yellows, pain among them     -> RED
//	all green                        -> GREEN
//	four green, one yellow, not pain -> GREEN
//	one yellow                       -> YELLOW
//	two yellows, pain not among them -> YELLOW
//
// A missing score makes the whole day UNKNOWN.
func ClassifyICS(s Scores) ICSClass {
	if !s.Complete() {
		return ICSUnknown
	}

	var greens, reds, yellows int
	painYellow := false
	for i, v := range []int{*s.Recovery, *s.Energy, *s.Sleep, *s.Stress, *s.Pain} {
		switch scoreColor(v) {
		case ICSGreen:
			greens++
		case ICSYellow:
			yellows++
			if i == 4 {
				painYellow = true
			}
		case ICSRed:
			reds++
		}
	}

	switch {
	case reds >= 1:
		return ICSRed
	case yellows >= 3:
		return ICSRed
	case yellows == 2 && painYellow:
		return ICSRed
	case greens == 5:
		return ICSGreen
	case greens == 4 && yellows == 1 && !painYellow:
		return ICSGreen
	case yellows == 1:
		return ICSYellow
	case yellows == 2 && !painYellow:
		return ICSYellow
	case yellows > 0:
		return ICSYellow
	default:
		return ICSUnknown
	}
}

// LatestICS searches backward from ref for the athlete's most recent
// classification other than UNKNOWN. Within a day the latest shift wins.
func LatestICS(t *Table, athleteID string, ref time.Time) (ICSClass, time.Time, bool) {
	rows := t.ForAthlete(athleteID).Between(time.Time{}, ref).Rows()
	for i := len(rows) - 1; i >= 0; i-- {
		if c := ClassifyICS(rows[i].Scores()); c != ICSUnknown {
			return c, rows[i].Day, true
		}
	}
	return ICSUnknown, time.Time{}, false
}

// ICSEntry is one classified check-in
type ICSEntry struct {
	AthleteID   string
	AthleteName string
	Date        time.Time
	Shift       Shift
	Class       ICSClass
}

// ICSCounts tallies check-ins per class
type ICSCounts struct {
	Red     int
	Yellow  int
	Green   int
	Unknown int
}

// Total returns the number of classified check-ins
func (c ICSCounts) Total() int {
	return c.Red + c.Yellow + c.Green + c.Unknown
}

// ClassifyRows classifies every check-in row, most severe first, then by
// most recent day and athlete.
func ClassifyRows(t *Table) []ICSEntry {
	var entries []ICSEntry
	for _, r := range t.CheckIns().Rows() {
		entries = append(entries, ICSEntry{
			AthleteID:   r.AthleteID,
			AthleteName: r.AthleteName,
			Date:        r.Day,
			Shift:       r.Shift,
			Class:       ClassifyICS(r.Scores()),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Class != entries[j].Class {
			return entries[i].Class.Severity() > entries[j].Class.Severity()
		}
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].AthleteID < entries[j].AthleteID
	})
	return entries
}

// CountICS tallies the classes of every check-in row
func CountICS(t *Table) ICSCounts {
	var counts ICSCounts
	for _, r := range t.CheckIns().Rows() {
		switch ClassifyICS(r.Scores()) {
		case ICSRed:
			counts.Red++
		case ICSYellow:
			counts.Yellow++
		case ICSGreen:
			counts.Green++
		default:
			counts.Unknown++
		}
	}
	return counts
}
