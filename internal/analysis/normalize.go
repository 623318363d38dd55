package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawRecord is one submission as it arrives from a form, a database row or
// a line of a JSONL file: loosely typed and possibly incomplete.
type RawRecord map[string]any

// Canonical field names followed by the legacy aliases found in older data.
var fieldAliases = map[string][]string{
	"athlete_id":             {"athlete_id", "id_jugadora", "identificacion"},
	"athlete_name":           {"athlete_name", "nombre_jugadora", "nombre"},
	"session_date":           {"session_date", "fecha_sesion", "fecha_hora", "fecha"},
	"shift":                  {"shift", "turno"},
	"recovery":               {"recovery", "recuperacion"},
	"energy":                 {"energy", "energia", "fatiga"},
	"sleep":                  {"sleep", "sueno"},
	"stress":                 {"stress", "estres"},
	"pain":                   {"pain", "dolor"},
	"pain_body_parts":        {"pain_body_parts", "partes_cuerpo_dolor"},
	"tactical_periodization": {"tactical_periodization", "periodizacion_tactica"},
	"in_menstrual_period":    {"in_menstrual_period", "en_periodo"},
	"free_text_note":         {"free_text_note", "observacion"},
	"session_minutes":        {"session_minutes", "minutos_sesion"},
	"rpe":                    {"rpe"},
	"internal_load":          {"internal_load", "ua"},
}

const (
	minScore      = 1
	maxScore      = 5
	minRPE        = 1
	maxRPE        = 10
	maxMinutes    = 24 * 60
	maxMatchdayOf = 14
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"02/01/2006",
}

// Normalize coerces raw submissions into a table. Malformed values become
// nil rather than failing; rows without an athlete or a parseable date
// cannot be keyed and are counted as dropped. Submissions sharing an
// identity are merged in input order.
func Normalize(raws []RawRecord) *Table {
	records := make([]Record, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		rec, ok := NormalizeRecord(raw)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	t := FromRecords(records)
	t.dropped = dropped
	return t
}

// NormalizeRecord converts one raw submission. It returns false when the
// record has no athlete id or session date.
func NormalizeRecord(raw RawRecord) (Record, bool) {
	var rec Record

	rec.AthleteID = coerceID(raw.lookup("athlete_id"))
	if rec.AthleteID == "" {
		return Record{}, false
	}
	date, ok := coerceDate(raw.lookup("session_date"))
	if !ok {
		return Record{}, false
	}
	rec.SessionDate = date
	rec.AthleteName = coerceString(raw.lookup("athlete_name"))
	rec.Shift = coerceShift(raw.lookup("shift"))

	rec.Recovery = coerceInt(raw.lookup("recovery"), minScore, maxScore)
	rec.Energy = coerceInt(raw.lookup("energy"), minScore, maxScore)
	rec.Sleep = coerceInt(raw.lookup("sleep"), minScore, maxScore)
	rec.Stress = coerceInt(raw.lookup("stress"), minScore, maxScore)
	rec.Pain = coerceInt(raw.lookup("pain"), minScore, maxScore)
	rec.PainBodyParts = coerceStringList(raw.lookup("pain_body_parts"))
	rec.TacticalPeriodization = coerceMatchday(raw.lookup("tactical_periodization"))
	rec.InMenstrualPeriod = coerceBool(raw.lookup("in_menstrual_period"))
	rec.Note = coerceString(raw.lookup("free_text_note"))

	rec.SessionMinutes = coerceInt(raw.lookup("session_minutes"), 1, maxMinutes)
	rec.RPE = coerceInt(raw.lookup("rpe"), minRPE, maxRPE)
	if ua := coerceFloat(raw.lookup("internal_load")); ua != nil && *ua >= 0 {
		rec.reportedLoad = ua
	}

	return rec, true
}

// lookup returns the first non-nil value among the field's aliases
func (raw RawRecord) lookup(field string) any {
	for _, key := range fieldAliases[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// coerceInt accepts integral numbers in [lo, hi]; anything else is nil
func coerceInt(v any, lo, hi int) *int {
	f := coerceFloat(v)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	n := int(*f)
	if n < lo || n > hi {
		return nil
	}
	return &n
}

func coerceID(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case nil:
		return ""
	}
	if f := coerceFloat(v); f != nil && *f == math.Trunc(*f) {
		return strconv.FormatInt(int64(*f), 10)
	}
	return ""
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func coerceDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return DayOf(x), true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return DayOf(t), true
			}
		}
		// Timestamps with fractional seconds or offsets
		if len(s) >= 10 {
			if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func coerceShift(v any) Shift {
	switch x := v.(type) {
	case string:
		return ParseShift(x)
	case Shift:
		return x
	}
	if n := coerceInt(v, 1, 3); n != nil {
		return Shift(*n)
	}
	return ShiftUnknown
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "y", "si", "sí":
			return true
		}
		return false
	}
	if f := coerceFloat(v); f != nil {
		return *f == 1
	}
	return false
}

func coerceStringList(v any) []string {
	var items []string
	switch x := v.(type) {
	case []string:
		items = x
	case []any:
		for _, it := range x {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				items = parsed
			}
		} else if s != "" {
			items = strings.Split(s, ",")
		}
	}

	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// coerceMatchday accepts a signed integer or an "MD-2" / "MD" / "MD+1" label
func coerceMatchday(v any) *int {
	if s, ok := v.(string); ok {
		label := strings.ToUpper(strings.TrimSpace(s))
		if label == "MD" {
			zero := 0
			return &zero
		}
		if strings.HasPrefix(label, "MD") {
			v = strings.TrimPrefix(strings.TrimPrefix(label, "MD"), "+")
		}
	}
	return coerceInt(v, -maxMatchdayOf, maxMatchdayOf)
}
