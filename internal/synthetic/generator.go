package synthetic

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

const (
	DefaultAthletes = 18
	DefaultDays     = 42
	DefaultSeed     = 7
	DefaultMissRate = 0.08
)

var bodyParts = []string{"hamstring", "quadriceps", "calf", "ankle", "knee", "groin", "lower back", "hip", "shoulder"}

// Options controls the size and shape of a generated squad
type Options struct {
	Athletes int
	Days     int
	End      time.Time // last generated day; zero means today
	Seed     int64
	MissRate float64 // chance that a single form is not submitted
}

// DefaultOptions returns a mid-season squad ending today
func DefaultOptions() Options {
	return Options{
		Athletes: DefaultAthletes,
		Days:     DefaultDays,
		Seed:     DefaultSeed,
		MissRate: DefaultMissRate,
	}
}

// Dataset is a roster plus the forms its athletes submitted
type Dataset struct {
	Roster    []analysis.RosterEntry
	CheckIns  []service.CheckIn
	CheckOuts []service.CheckOut
}

type profile struct {
	id       string
	name     string
	minutes  int     // typical session length
	rpe      int     // typical effort
	spikeAt  int     // day index from which load ramps up, -1 for none
	fragile  bool    // reports worse wellness under load
	cycleDay int     // offset into a 28-day cycle, -1 when not tracked
	noteRate float64 // chance of a free-text note
}

// Generate builds a deterministic dataset: the same Options always produce
// the same forms. Matches are played on Saturdays and Sundays are rest days.
func Generate(opts Options) Dataset {
	if opts.Athletes <= 0 {
		opts.Athletes = DefaultAthletes
	}
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	end := analysis.DayOf(opts.End)
	if opts.End.IsZero() {
		end = analysis.DayOf(time.Now())
	}
	start := end.AddDate(0, 0, -(opts.Days - 1))

	f := gofakeit.New(opts.Seed)

	profiles := make([]profile, 0, opts.Athletes)
	var ds Dataset
	for i := 0; i < opts.Athletes; i++ {
		p := profile{
			id:       fmt.Sprintf("P%02d", i+1),
			name:     f.FirstName() + " " + f.LastName(),
			minutes:  f.IntRange(60, 100),
			rpe:      f.IntRange(4, 7),
			spikeAt:  -1,
			fragile:  f.Float64() < 0.2,
			cycleDay: -1,
			noteRate: f.Float64Range(0, 0.15),
		}
		if f.Float64() < 0.25 {
			p.spikeAt = opts.Days - f.IntRange(5, 9)
		}
		if f.Bool() {
			p.cycleDay = f.IntRange(0, 27)
		}
		profiles = append(profiles, p)
		ds.Roster = append(ds.Roster, analysis.RosterEntry{AthleteID: p.id, AthleteName: p.name})
	}

	for day := 0; day < opts.Days; day++ {
		date := start.AddDate(0, 0, day)
		if date.Weekday() == time.Sunday {
			continue
		}
		offset := matchdayOffset(date)
		sessionDate := date.Format("2006-01-02")

		for _, p := range profiles {
			minutes, rpe := p.session(f, day, date)

			if f.Float64() >= opts.MissRate {
				ds.CheckIns = append(ds.CheckIns, p.checkIn(f, sessionDate, offset, day, rpe))
			}
			if f.Float64() >= opts.MissRate {
				ds.CheckOuts = append(ds.CheckOuts, service.CheckOut{
					AthleteID:      p.id,
					AthleteName:    p.name,
					SessionDate:    sessionDate,
					Shift:          "1",
					SessionMinutes: minutes,
					RPE:            rpe,
				})
			}
		}
	}
	return ds
}

// session picks the day's minutes and RPE; matches are long and hard, the
// day before is light, and spiking athletes roughly double their load.
func (p profile) session(f *gofakeit.Faker, day int, date time.Time) (int, int) {
	minutes := p.minutes + f.IntRange(-15, 15)
	rpe := p.rpe + f.IntRange(-1, 1)

	switch date.Weekday() {
	case time.Saturday:
		minutes, rpe = f.IntRange(70, 95), rpe+2
	case time.Friday:
		minutes, rpe = minutes/2, rpe-2
	}
	if p.spikeAt >= 0 && day >= p.spikeAt {
		minutes += minutes * 3 / 4
		rpe += 2
	}
	return clampInt(minutes, 10, service.MaxSessionMinutes), clampInt(rpe, service.MinRPE, service.MaxRPE)
}

func (p profile) checkIn(f *gofakeit.Faker, sessionDate string, offset, day, rpe int) service.CheckIn {
	strain := 0
	if rpe >= 8 {
		strain = 1
	}
	if p.fragile {
		strain++
	}

	score := func(base int) int {
		return clampInt(base+f.IntRange(0, 1)+strain, service.MinScore, service.MaxScore)
	}
	c := service.CheckIn{
		AthleteID:   p.id,
		AthleteName: p.name,
		SessionDate: sessionDate,
		Shift:       "1",
		Recovery:    score(1),
		Energy:      score(1),
		Sleep:       score(1),
		Stress:      score(1),
		Pain:        clampInt(f.IntRange(1, 2)+strain-1, service.MinScore, service.MaxScore),
	}
	if c.Pain > service.PainNeedsBodyPartsAbove {
		c.PainBodyParts = []string{f.RandomString(bodyParts)}
	}
	tp := offset
	c.TacticalPeriodization = &tp
	if p.cycleDay >= 0 && (p.cycleDay+day)%28 < 5 {
		c.InMenstrualPeriod = true
	}
	if f.Float64() < p.noteRate {
		c.Note = f.Sentence(6)
	}
	return c
}

// matchdayOffset is the signed distance to the nearest Saturday: -1 on
// Friday, +1 on Sunday, 0 on the match itself.
func matchdayOffset(date time.Time) int {
	daysToSaturday := (int(time.Saturday) - int(date.Weekday()) + 7) % 7
	if daysToSaturday <= 3 {
		return -daysToSaturday
	}
	return 7 - daysToSaturday
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SubmitResult counts what happened to a dataset on its way into the store
type SubmitResult struct {
	Created int
	Merged  int
}

// Submit sends every form through the ingest service, check-ins first so
// that check-outs merge into them.
func (d Dataset) Submit(ctx context.Context, ingest *service.IngestService) (SubmitResult, error) {
	var res SubmitResult
	tally := func(r *service.SubmitResult) {
		if r.Created {
			res.Created++
		} else {
			res.Merged++
		}
	}

	for _, c := range d.CheckIns {
		r, err := ingest.SubmitCheckIn(ctx, c)
		if err != nil {
			return res, fmt.Errorf("check-in %s %s: %w", c.AthleteID, c.SessionDate, err)
		}
		tally(r)
	}
	for _, c := range d.CheckOuts {
		r, err := ingest.SubmitCheckOut(ctx, c)
		if err != nil {
			return res, fmt.Errorf("check-out %s %s: %w", c.AthleteID, c.SessionDate, err)
		}
		tally(r)
	}

	logrus.WithFields(logrus.Fields{
		"athletes": len(d.Roster),
		"created":  res.Created,
		"merged":   res.Merged,
	}).Info("synthetic dataset submitted")
	return res, nil
}
