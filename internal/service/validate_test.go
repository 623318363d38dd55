package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadload/internal/analysis"
)

func validCheckIn() CheckIn {
	return CheckIn{
		AthleteID:   "7",
		AthleteName: " Ana ",
		SessionDate: "2024-03-01",
		Shift:       "Turno 2",
		Recovery:    2,
		Energy:      2,
		Sleep:       2,
		Stress:      2,
		Pain:        1,
	}
}

func TestValidateCheckIn(t *testing.T) {
	rec, err := ValidateCheckIn(validCheckIn())
	require.NoError(t, err)

	assert.Equal(t, "7", rec.AthleteID)
	assert.Equal(t, "Ana", rec.AthleteName)
	assert.Equal(t, analysis.Shift2, rec.Shift)
	assert.Equal(t, "2024-03-01", rec.SessionDate.Format("2006-01-02"))
	assert.Equal(t, analysis.ICSGreen, analysis.ClassifyICS(rec.Scores()))
	assert.False(t, rec.HasCheckOut())
}

func TestValidateCheckInErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*CheckIn)
		problems int
	}{
		{"missing athlete", func(c *CheckIn) { c.AthleteID = "  " }, 1},
		{"bad date", func(c *CheckIn) { c.SessionDate = "01/03/2024" }, 1},
		{"score out of range", func(c *CheckIn) { c.Sleep = 6 }, 1},
		{"unreported score", func(c *CheckIn) { c.Energy = 0 }, 1},
		{"pain without body parts", func(c *CheckIn) { c.Pain = 3 }, 1},
		{"matchday too far", func(c *CheckIn) { md := 20; c.TacticalPeriodization = &md }, 1},
		{"no shift", func(c *CheckIn) { c.Shift = "" }, 1},
		{"unknown shift", func(c *CheckIn) { c.Shift = "x" }, 1},
		{"fourth shift", func(c *CheckIn) { c.Shift = "4" }, 1},
		{"everything wrong", func(c *CheckIn) {
			c.AthleteID = ""
			c.SessionDate = ""
			c.Recovery = 0
			c.Pain = 4
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCheckIn()
			tt.mutate(&c)

			_, err := ValidateCheckIn(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSubmission)

			assert.Len(t, Problems(err), tt.problems)
		})
	}
}

func TestValidateCheckInBodyParts(t *testing.T) {
	c := validCheckIn()
	c.Pain = 3
	c.PainBodyParts = []string{" knee ", ""}

	rec, err := ValidateCheckIn(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"knee"}, rec.PainBodyParts)
}

func TestValidateCheckOut(t *testing.T) {
	rec, err := ValidateCheckOut(CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "T3", SessionMinutes: 75, RPE: 6})
	require.NoError(t, err)
	require.NotNil(t, rec.InternalLoad())
	assert.Equal(t, 450.0, *rec.InternalLoad())
	assert.Equal(t, analysis.Shift3, rec.Shift)

	tests := []struct {
		name string
		c    CheckOut
	}{
		{"zero minutes", CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "1", SessionMinutes: 0, RPE: 6}},
		{"over a day", CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "1", SessionMinutes: 1441, RPE: 6}},
		{"rpe too high", CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "1", SessionMinutes: 60, RPE: 11}},
		{"no date", CheckOut{AthleteID: "7", Shift: "1", SessionMinutes: 60, RPE: 5}},
		{"no shift", CheckOut{AthleteID: "7", SessionDate: "2024-03-01", SessionMinutes: 60, RPE: 5}},
		{"fourth shift", CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "4", SessionMinutes: 60, RPE: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCheckOut(tt.c)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
		})
	}
}
