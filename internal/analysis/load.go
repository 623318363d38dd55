package analysis

import (
	"math"
	"sort"
	"time"
)

// Window lengths in calendar days, inclusive of the reference day
const (
	AcuteWindowDays   = 7
	ChronicWindowDays = 28
)

// DailyLoad is the summed internal load (UA) of one athlete on one day,
// across every shift. A group total has an empty AthleteID.
type DailyLoad struct {
	AthleteID string
	Date      time.Time
	Load      float64
}

// DailyLoads sums internal load per athlete per day. Rows whose load cannot
// be derived contribute nothing. Output is ordered by day, then athlete.
func DailyLoads(t *Table) []DailyLoad {
	type key struct {
		athlete string
		day     string
	}
	index := make(map[key]int)
	var loads []DailyLoad

	for _, r := range t.Rows() {
		ua := r.InternalLoad()
		if ua == nil {
			continue
		}
		k := key{r.AthleteID, dayKey(r.Day)}
		if i, ok := index[k]; ok {
			loads[i].Load += *ua
			continue
		}
		index[k] = len(loads)
		loads = append(loads, DailyLoad{AthleteID: r.AthleteID, Date: r.Day, Load: *ua})
	}
	return loads
}

// GroupDailyLoads collapses per-athlete loads into one team total per day
func GroupDailyLoads(loads []DailyLoad) []DailyLoad {
	index := make(map[string]int)
	var out []DailyLoad
	for _, dl := range loads {
		k := dayKey(dl.Date)
		if i, ok := index[k]; ok {
			out[i].Load += dl.Load
			continue
		}
		index[k] = len(out)
		out = append(out, DailyLoad{Date: DayOf(dl.Date), Load: dl.Load})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RollingWindowStats holds the load windows anchored at a reference day.
//
// Means are taken over days that have data, so rest days do not dilute
// them. Sums over an empty window are 0; means over an empty window are nil.
type RollingWindowStats struct {
	AthleteID    string
	ReferenceDay time.Time

	DayLoad float64 // load on the reference day

	Acute7dSum        float64
	Acute7dMeanPerDay float64 // Acute7dSum / 7
	Chronic28dMean    *float64

	WeeklySum    float64
	WeeklyMean   *float64
	WeeklyStdDev *float64 // population stddev; nil with fewer than 2 days of data

	MonthlySum  float64
	MonthlyMean *float64

	AcuteDays   int
	ChronicDays int
	WeeklyDays  int
	MonthlyDays int
}

// ComputeWindows aggregates one series of daily loads (one athlete, or a
// group total) at the reference day. The weekly window is the Monday to
// Sunday week containing ref and the monthly window its calendar month;
// acute and chronic windows trail back from ref. Loads after ref are
// ignored by the trailing windows only.
func ComputeWindows(loads []DailyLoad, ref time.Time) RollingWindowStats {
	ref = DayOf(ref)
	stats := RollingWindowStats{ReferenceDay: ref}
	if len(loads) > 0 {
		stats.AthleteID = loads[0].AthleteID
	}

	// Re-sum per day so callers may pass per-shift or per-athlete rows
	perDay := make(map[string]float64)
	days := make(map[string]time.Time)
	for _, dl := range loads {
		k := dayKey(dl.Date)
		perDay[k] += dl.Load
		days[k] = DayOf(dl.Date)
	}

	weekStart, weekEnd := weekRange(ref)
	monthStart, monthEnd := monthRange(ref)
	acuteStart, _ := trailingRange(ref, AcuteWindowDays)
	chronicStart, _ := trailingRange(ref, ChronicWindowDays)

	var weekly []float64
	var chronicSum, monthlySum float64
	for k, day := range days {
		load := perDay[k]
		if day.Equal(ref) {
			stats.DayLoad = load
		}
		if inRange(day, acuteStart, ref) {
			stats.Acute7dSum += load
			stats.AcuteDays++
		}
		if inRange(day, chronicStart, ref) {
			chronicSum += load
			stats.ChronicDays++
		}
		if inRange(day, weekStart, weekEnd) {
			weekly = append(weekly, load)
		}
		if inRange(day, monthStart, monthEnd) {
			monthlySum += load
			stats.MonthlyDays++
		}
	}

	stats.Acute7dMeanPerDay = stats.Acute7dSum / AcuteWindowDays
	stats.Chronic28dMean = meanOf(chronicSum, stats.ChronicDays)

	stats.WeeklyDays = len(weekly)
	stats.WeeklySum = sum(weekly)
	stats.WeeklyMean = meanOf(stats.WeeklySum, stats.WeeklyDays)
	stats.WeeklyStdDev = populationStdDev(weekly)

	stats.MonthlySum = monthlySum
	stats.MonthlyMean = meanOf(monthlySum, stats.MonthlyDays)

	return stats
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func meanOf(total float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	m := total / float64(n)
	return &m
}

// populationStdDev is the ddof=0 standard deviation, nil below two samples
func populationStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	mean := sum(values) / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(sq / float64(len(values)))
	return &sd
}
