package analysis

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultACWRWeight blends load and wellness risk equally
const DefaultACWRWeight = 0.5

// Neutral risk used when an input is missing
const neutralRisk = 0.5

// RiskFromACWR maps a ratio onto [0,1], piecewise-linear across the bands.
// A missing ratio is neutral.
func RiskFromACWR(acwr *float64) float64 {
	if acwr == nil {
		return neutralRisk
	}
	x := *acwr
	switch {
	case x < ACWRSweetSpotLow:
		return 0.2
	case x < ACWRElevatedLow:
		return 0.3 + (x-ACWRSweetSpotLow)*0.4
	case x < ACWRDangerLow:
		return 0.6 + (x-ACWRElevatedLow)*1.0
	default:
		return 1.0
	}
}

// RiskFromICS maps a wellness class onto [0,1]
func RiskFromICS(c ICSClass) float64 {
	switch c {
	case ICSRed:
		return 1.0
	case ICSYellow:
		return 0.6
	case ICSGreen:
		return 0.2
	default:
		return neutralRisk
	}
}

// NormalizeWeight clamps w to [0,1]; NaN falls back to the default
func NormalizeWeight(w float64) float64 {
	switch {
	case math.IsNaN(w):
		return DefaultACWRWeight
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}

// CombineRisk returns w*fromACWR + (1-w)*fromICS
func CombineRisk(fromACWR, fromICS, w float64) float64 {
	w = NormalizeWeight(w)
	return w*fromACWR + (1-w)*fromICS
}

// RiskScore is one athlete's proximity-to-injury estimate at a reference
// day. It is a triage aid for ranking athletes, not a diagnosis.
type RiskScore struct {
	AthleteID    string
	AthleteName  string
	ReferenceDay time.Time

	Windows RollingWindowStats
	Indices LoadIndices

	ICS     ICSClass
	ICSDate time.Time // zero when no classified check-in exists

	RiskFromACWR float64
	RiskFromICS  float64
	CombinedRisk float64
}

// ACWR is a shortcut for Indices.ACWR
func (s RiskScore) ACWR() *float64 {
	return s.Indices.ACWR
}

// Score10 returns the combined risk on a 0-10 scale
func (s RiskScore) Score10() float64 {
	return s.CombinedRisk * 10
}

// ScoreAthlete computes the risk of one athlete at ref with ACWR weight w
func ScoreAthlete(t *Table, athleteID string, ref time.Time, w float64) RiskScore {
	ref = DayOf(ref)
	athlete := t.ForAthlete(athleteID)

	windows := ComputeWindows(DailyLoads(athlete.CheckOuts()), ref)
	windows.AthleteID = athleteID
	indices := ComputeIndices(windows)
	ics, icsDate, _ := LatestICS(athlete, athleteID, ref)

	score := RiskScore{
		AthleteID:    athleteID,
		AthleteName:  athlete.AthleteNames()[athleteID],
		ReferenceDay: ref,
		Windows:      windows,
		Indices:      indices,
		ICS:          ics,
		ICSDate:      icsDate,
		RiskFromACWR: RiskFromACWR(indices.ACWR),
		RiskFromICS:  RiskFromICS(ics),
	}
	score.CombinedRisk = CombineRisk(score.RiskFromACWR, score.RiskFromICS, w)
	return score
}

// ScoreTeam scores every athlete in the table in parallel. A zero ref uses
// the last day with data. Results are ordered by combined risk, highest
// first. Each worker reads the shared table and writes only its own slot.
func ScoreTeam(ctx context.Context, t *Table, ref time.Time, w float64) ([]RiskScore, error) {
	if ref.IsZero() {
		maxDay, ok := t.MaxDay()
		if !ok {
			return nil, nil
		}
		ref = maxDay
	}

	athletes := t.Athletes()
	scores := make([]RiskScore, len(athletes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range athletes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = ScoreAthlete(t, id, ref, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].CombinedRisk != scores[j].CombinedRisk {
			return scores[i].CombinedRisk > scores[j].CombinedRisk
		}
		return scores[i].AthleteID < scores[j].AthleteID
	})
	return scores, nil
}

// RiskSummary aggregates a team risk board
type RiskSummary struct {
	Athletes      int
	MeanRisk      *float64 // combined, 0-1
	DangerPercent *float64 // share of athletes with ACWR strictly above 1.5
	DangerCount   int
	RedCount      int
}

// SummarizeRisk aggregates scores; percentages and means are nil when empty.
// DangerCount uses ACWR > 1.5, so an athlete at exactly 1.5 is BandDanger
// on the board but not counted here.
func SummarizeRisk(scores []RiskScore) RiskSummary {
	summary := RiskSummary{Athletes: len(scores)}
	if len(scores) == 0 {
		return summary
	}

	var total float64
	for _, s := range scores {
		total += s.CombinedRisk
		if acwr := s.ACWR(); acwr != nil && *acwr > ACWRDangerLow {
			summary.DangerCount++
		}
		if s.ICS == ICSRed {
			summary.RedCount++
		}
	}
	summary.MeanRisk = meanOf(total, len(scores))
	pct := float64(summary.DangerCount) / float64(len(scores)) * 100
	summary.DangerPercent = &pct
	return summary
}
