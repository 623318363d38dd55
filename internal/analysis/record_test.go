package analysis

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseShift(t *testing.T) {
	tests := []struct {
		input string
		want  Shift
	}{
		{"1", Shift1},
		{"Shift2", Shift2},
		{"shift 3", Shift3},
		{"Turno 1", Shift1},
		{"T2", Shift2},
		{"", ShiftUnknown},
		{"4", ShiftUnknown},
		{"morning", ShiftUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseShift(tt.input); got != tt.want {
				t.Errorf("ParseShift(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecordInternalLoad(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   *float64
	}{
		{
			name:   "minutes times rpe",
			record: checkOut("a", day(2024, 3, 1), 90, 7),
			want:   floatPtr(630),
		},
		{
			name:   "missing rpe",
			record: Record{SessionMinutes: intPtr(90)},
			want:   nil,
		},
		{
			name:   "reported load used when minutes missing",
			record: Record{RPE: intPtr(5)}.WithReportedLoad(floatPtr(420)),
			want:   floatPtr(420),
		},
		{
			name:   "derived load wins over reported",
			record: checkOut("a", day(2024, 3, 1), 60, 5).WithReportedLoad(floatPtr(999)),
			want:   floatPtr(300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatPtr(t, "InternalLoad()", tt.record.InternalLoad(), tt.want, 0)
		})
	}
}

func TestRecordMerge(t *testing.T) {
	date := day(2024, 3, 4)

	t.Run("check-in and check-out combine", func(t *testing.T) {
		in := checkIn("a", date, 2, 2, 3, 3, 2)
		out := checkOut("a", date, 90, 6)

		merged := in.Merge(out)
		if merged.Recovery == nil || *merged.Recovery != 2 {
			t.Errorf("Recovery = %v, want 2", merged.Recovery)
		}
		if merged.RPE == nil || *merged.RPE != 6 {
			t.Errorf("RPE = %v, want 6", merged.RPE)
		}
		if !merged.HasCheckIn() || !merged.HasCheckOut() {
			t.Error("merged record should carry both check-in and check-out")
		}
	})

	t.Run("newer non-empty values win", func(t *testing.T) {
		old := checkIn("a", date, 2, 2, 2, 2, 2)
		old.Note = "tight hamstring"
		newer := Record{AthleteID: "a", SessionDate: date, Shift: Shift1, Pain: intPtr(4)}

		merged := old.Merge(newer)
		if *merged.Pain != 4 {
			t.Errorf("Pain = %d, want 4", *merged.Pain)
		}
		if *merged.Sleep != 2 {
			t.Errorf("Sleep = %d, want 2 (nil must not erase)", *merged.Sleep)
		}
		if merged.Note != "tight hamstring" {
			t.Errorf("Note = %q, want kept", merged.Note)
		}
	})

	t.Run("menstrual flag only promotes", func(t *testing.T) {
		old := checkIn("a", date, 1, 1, 1, 1, 1)
		old.InMenstrualPeriod = true
		newer := checkIn("a", date, 1, 1, 1, 1, 1)

		if !old.Merge(newer).InMenstrualPeriod {
			t.Error("InMenstrualPeriod reset to false by merge")
		}
		if !newer.Merge(old).InMenstrualPeriod {
			t.Error("InMenstrualPeriod not promoted to true by merge")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		base := checkOut("a", date, 60, 5)
		sub := checkIn("a", date, 3, 2, 2, 1, 3)
		sub.PainBodyParts = []string{"knee"}

		once := base.Merge(sub)
		twice := once.Merge(sub)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("merging twice = %+v, want %+v", twice, once)
		}
	})

	t.Run("does not alias inputs", func(t *testing.T) {
		old := checkIn("a", date, 1, 1, 1, 1, 1)
		merged := old.Merge(Record{})
		*merged.Recovery = 5
		if *old.Recovery != 1 {
			t.Error("mutating merge result changed the original record")
		}
	})
}

func TestNewTableRejectsDuplicateIdentity(t *testing.T) {
	date := day(2024, 3, 4)
	_, err := NewTable([]Record{
		checkIn("a", date, 1, 1, 1, 1, 1),
		checkOut("a", date.Add(15*time.Hour), 60, 5),
	})
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("NewTable() error = %v, want ErrDuplicateIdentity", err)
	}
}

func TestFromRecordsMergesBeforeAggregating(t *testing.T) {
	date := day(2024, 3, 4)
	table := FromRecords([]Record{
		checkIn("a", date, 1, 1, 1, 1, 1),
		checkOut("a", date, 60, 5),
		checkOut("a", date, 60, 5),
	})

	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	loads := DailyLoads(table)
	if len(loads) != 1 || loads[0].Load != 300 {
		t.Errorf("DailyLoads() = %+v, want a single 300 UA day", loads)
	}
}

func TestTableIsNotMutatedByFilters(t *testing.T) {
	table := mustTable(t,
		checkIn("a", day(2024, 3, 1), 1, 1, 1, 1, 1),
		checkOut("b", day(2024, 3, 2), 60, 5),
	)

	rows := table.Rows()
	rows[0].AthleteID = "changed"
	_ = table.ForAthlete("a").CheckOuts()

	if got := table.Rows()[0].AthleteID; got != "a" {
		t.Errorf("table row changed to %q through a copy", got)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTableAccessors(t *testing.T) {
	table := mustTable(t,
		checkIn("b", day(2024, 3, 3), 1, 1, 1, 1, 1),
		checkOut("a", day(2024, 3, 1), 60, 5),
		checkIn("a", day(2024, 3, 3), 2, 2, 2, 2, 2),
	)

	maxDay, ok := table.MaxDay()
	if !ok || !maxDay.Equal(day(2024, 3, 3)) {
		t.Errorf("MaxDay() = %v, %v, want 2024-03-03", maxDay, ok)
	}
	if got := table.Athletes(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Athletes() = %v", got)
	}
	if got := len(table.Days()); got != 2 {
		t.Errorf("len(Days()) = %d, want 2", got)
	}
	if got := table.CheckIns().Len(); got != 2 {
		t.Errorf("CheckIns().Len() = %d, want 2", got)
	}
	if got := table.CheckOuts().Len(); got != 1 {
		t.Errorf("CheckOuts().Len() = %d, want 1", got)
	}

	if _, ok := (&Table{}).MaxDay(); ok {
		t.Error("MaxDay() on empty table should report false")
	}
}
