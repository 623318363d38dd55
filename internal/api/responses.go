package api

import (
	"time"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

const dateLayout = "2006-01-02"

// Undefined quantities (no data, zero denominators) encode as null.

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type windowsResponse struct {
	ReferenceDay      string   `json:"reference_day"`
	DayLoad           float64  `json:"day_load"`
	Acute7dSum        float64  `json:"acute_7d_sum"`
	Acute7dMeanPerDay float64  `json:"acute_7d_mean_per_day"`
	Chronic28dMean    *float64 `json:"chronic_28d_mean"`
	WeeklySum         float64  `json:"weekly_sum"`
	WeeklyMean        *float64 `json:"weekly_mean"`
	WeeklyStdDev      *float64 `json:"weekly_stddev"`
	MonthlySum        float64  `json:"monthly_sum"`
	MonthlyMean       *float64 `json:"monthly_mean"`
}

func newWindowsResponse(w analysis.RollingWindowStats) windowsResponse {
	return windowsResponse{
		ReferenceDay:      formatDate(w.ReferenceDay),
		DayLoad:           w.DayLoad,
		Acute7dSum:        w.Acute7dSum,
		Acute7dMeanPerDay: w.Acute7dMeanPerDay,
		Chronic28dMean:    w.Chronic28dMean,
		WeeklySum:         w.WeeklySum,
		WeeklyMean:        w.WeeklyMean,
		WeeklyStdDev:      w.WeeklyStdDev,
		MonthlySum:        w.MonthlySum,
		MonthlyMean:       w.MonthlyMean,
	}
}

type indicesResponse struct {
	ACWR            *float64 `json:"acwr"`
	AdaptationIndex *float64 `json:"adaptation_index"`
	Monotony        *float64 `json:"monotony"`
	Variability     *float64 `json:"variability"`
	Band            string   `json:"band"`
}

func newIndicesResponse(idx analysis.LoadIndices) indicesResponse {
	return indicesResponse{
		ACWR:            idx.ACWR,
		AdaptationIndex: idx.AdaptationIndex,
		Monotony:        idx.Monotony,
		Variability:     idx.Variability,
		Band:            idx.Band.String(),
	}
}

type readingResponse struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func newReadingResponse(r analysis.Reading) readingResponse {
	return readingResponse{Level: r.Level.String(), Text: r.Text}
}

type interpretationResponse struct {
	WeeklyLoad   readingResponse `json:"weekly_load"`
	AcuteFatigue readingResponse `json:"acute_fatigue"`
	ACWR         readingResponse `json:"acwr"`
	Monotony     readingResponse `json:"monotony"`
	Adaptation   readingResponse `json:"adaptation"`
}

func newInterpretationResponse(i analysis.LoadInterpretation) interpretationResponse {
	return interpretationResponse{
		WeeklyLoad:   newReadingResponse(i.WeeklyLoad),
		AcuteFatigue: newReadingResponse(i.AcuteFatigue),
		ACWR:         newReadingResponse(i.ACWR),
		Monotony:     newReadingResponse(i.Monotony),
		Adaptation:   newReadingResponse(i.Adaptation),
	}
}

type riskScoreResponse struct {
	AthleteID    string          `json:"athlete_id"`
	AthleteName  string          `json:"athlete_name,omitempty"`
	ReferenceDay string          `json:"reference_day"`
	Indices      indicesResponse `json:"indices"`
	Windows      windowsResponse `json:"windows"`
	ICS          string          `json:"ics"`
	ICSDate      string          `json:"ics_date,omitempty"`
	RiskFromACWR float64         `json:"risk_from_acwr"`
	RiskFromICS  float64         `json:"risk_from_ics"`
	CombinedRisk float64         `json:"combined_risk"`
	Score10      float64         `json:"score_10"`
}

func newRiskScoreResponse(s analysis.RiskScore) riskScoreResponse {
	return riskScoreResponse{
		AthleteID:    s.AthleteID,
		AthleteName:  s.AthleteName,
		ReferenceDay: formatDate(s.ReferenceDay),
		Indices:      newIndicesResponse(s.Indices),
		Windows:      newWindowsResponse(s.Windows),
		ICS:          s.ICS.String(),
		ICSDate:      formatDate(s.ICSDate),
		RiskFromACWR: s.RiskFromACWR,
		RiskFromICS:  s.RiskFromICS,
		CombinedRisk: s.CombinedRisk,
		Score10:      s.Score10(),
	}
}

type riskBoardResponse struct {
	ReferenceDay  string              `json:"reference_day,omitempty"`
	Weight        float64             `json:"weight"`
	Athletes      int                 `json:"athletes"`
	MeanRisk      *float64            `json:"mean_risk"`
	DangerPercent *float64            `json:"danger_percent"`
	DangerCount   int                 `json:"danger_count"`
	RedCount      int                 `json:"red_count"`
	Scores        []riskScoreResponse `json:"scores"`
}

func newRiskBoardResponse(b *service.RiskBoard) riskBoardResponse {
	resp := riskBoardResponse{
		ReferenceDay:  formatDate(b.ReferenceDay),
		Weight:        b.Weight,
		Athletes:      b.Summary.Athletes,
		MeanRisk:      b.Summary.MeanRisk,
		DangerPercent: b.Summary.DangerPercent,
		DangerCount:   b.Summary.DangerCount,
		RedCount:      b.Summary.RedCount,
		Scores:        make([]riskScoreResponse, 0, len(b.Scores)),
	}
	for _, s := range b.Scores {
		resp.Scores = append(resp.Scores, newRiskScoreResponse(s))
	}
	return resp
}

type acwrPointResponse struct {
	Date           string   `json:"date"`
	Load           float64  `json:"load"`
	Acute7dSum     float64  `json:"acute_7d_sum"`
	Chronic28dMean *float64 `json:"chronic_28d_mean"`
	ACWR           *float64 `json:"acwr"`
	Band           string   `json:"band"`
	Energy         *float64 `json:"energy"`
	InjuryRisk     string   `json:"injury_risk"`
}

type recordResponse struct {
	AthleteID             string   `json:"athlete_id"`
	AthleteName           string   `json:"athlete_name,omitempty"`
	SessionDate           string   `json:"session_date"`
	Shift                 string   `json:"shift,omitempty"`
	Recovery              *int     `json:"recovery"`
	Energy                *int     `json:"energy"`
	Sleep                 *int     `json:"sleep"`
	Stress                *int     `json:"stress"`
	Pain                  *int     `json:"pain"`
	PainBodyParts         []string `json:"pain_body_parts,omitempty"`
	Matchday              string   `json:"matchday,omitempty"`
	InMenstrualPeriod     bool     `json:"in_menstrual_period"`
	Note                  string   `json:"free_text_note,omitempty"`
	SessionMinutes        *int     `json:"session_minutes"`
	RPE                   *int     `json:"rpe"`
	InternalLoad          *float64 `json:"internal_load"`
	ICS                   string   `json:"ics"`
	TacticalPeriodization *int     `json:"tactical_periodization"`
}

func newRecordResponse(r analysis.Record) recordResponse {
	return recordResponse{
		AthleteID:             r.AthleteID,
		AthleteName:           r.AthleteName,
		SessionDate:           formatDate(r.SessionDate),
		Shift:                 r.Shift.String(),
		Recovery:              r.Recovery,
		Energy:                r.Energy,
		Sleep:                 r.Sleep,
		Stress:                r.Stress,
		Pain:                  r.Pain,
		PainBodyParts:         r.PainBodyParts,
		Matchday:              analysis.MatchdayLabel(r.TacticalPeriodization),
		InMenstrualPeriod:     r.InMenstrualPeriod,
		Note:                  r.Note,
		SessionMinutes:        r.SessionMinutes,
		RPE:                   r.RPE,
		InternalLoad:          r.InternalLoad(),
		ICS:                   analysis.ClassifyICS(r.Scores()).String(),
		TacticalPeriodization: r.TacticalPeriodization,
	}
}

type athleteLoadResponse struct {
	AthleteID      string                 `json:"athlete_id"`
	AthleteName    string                 `json:"athlete_name,omitempty"`
	ReferenceDay   string                 `json:"reference_day"`
	LastCheckIn    string                 `json:"last_check_in,omitempty"`
	Weight         float64                `json:"weight"`
	Risk           riskScoreResponse      `json:"risk"`
	Interpretation interpretationResponse `json:"interpretation"`
	Series         []acwrPointResponse    `json:"series"`
	Recent         []recordResponse       `json:"recent"`
}

func newAthleteLoadResponse(r *service.AthleteReport) athleteLoadResponse {
	resp := athleteLoadResponse{
		AthleteID:      r.AthleteID,
		AthleteName:    r.AthleteName,
		ReferenceDay:   formatDate(r.ReferenceDay),
		LastCheckIn:    formatDate(r.LastCheckIn),
		Weight:         r.Weight,
		Risk:           newRiskScoreResponse(r.Score),
		Interpretation: newInterpretationResponse(r.Interpretation),
		Series:         make([]acwrPointResponse, 0, len(r.Series)),
		Recent:         make([]recordResponse, 0, len(r.Recent)),
	}
	for _, p := range r.Series {
		resp.Series = append(resp.Series, acwrPointResponse{
			Date:           formatDate(p.Date),
			Load:           p.Load,
			Acute7dSum:     p.Acute7dSum,
			Chronic28dMean: p.Chronic28dMean,
			ACWR:           p.ACWR,
			Band:           p.Band.String(),
			Energy:         p.Energy,
			InjuryRisk:     p.InjuryRisk.String(),
		})
	}
	for _, row := range r.Recent {
		resp.Recent = append(resp.Recent, newRecordResponse(row.Record))
	}
	return resp
}

type dailyLoadResponse struct {
	Date string  `json:"date"`
	Load float64 `json:"load"`
}

type loadReportResponse struct {
	Empty          bool                    `json:"empty"`
	ReferenceDay   string                  `json:"reference_day,omitempty"`
	Daily          []dailyLoadResponse     `json:"daily"`
	Windows        *windowsResponse        `json:"windows,omitempty"`
	Indices        *indicesResponse        `json:"indices,omitempty"`
	Interpretation *interpretationResponse `json:"interpretation,omitempty"`
}

func newLoadReportResponse(r analysis.LoadReport) loadReportResponse {
	resp := loadReportResponse{
		Empty: r.Empty,
		Daily: make([]dailyLoadResponse, 0, len(r.Daily)),
	}
	for _, dl := range r.Daily {
		resp.Daily = append(resp.Daily, dailyLoadResponse{Date: formatDate(dl.Date), Load: dl.Load})
	}
	if r.Empty {
		return resp
	}
	windows := newWindowsResponse(r.Windows)
	indices := newIndicesResponse(r.Indices)
	resp.ReferenceDay = formatDate(r.ReferenceDay)
	interpretation := newInterpretationResponse(r.Interpretation)
	resp.Windows = &windows
	resp.Indices = &indices
	resp.Interpretation = &interpretation
	return resp
}

type metricBlockResponse struct {
	Value   *float64  `json:"value"`
	Series  []float64 `json:"series"`
	Delta   float64   `json:"delta"`
	Reading string    `json:"reading,omitempty"`
}

func newMetricBlockResponse(b analysis.MetricBlock) metricBlockResponse {
	series := b.Series
	if series == nil {
		series = []float64{}
	}
	return metricBlockResponse{Value: b.Value, Series: series, Delta: b.Delta, Reading: b.Reading}
}

type playerResponse struct {
	AthleteID   string   `json:"athlete_id"`
	AthleteName string   `json:"athlete_name,omitempty"`
	Recovery    *float64 `json:"recovery"`
	Energy      *float64 `json:"energy"`
	Sleep       *float64 `json:"sleep"`
	Stress      *float64 `json:"stress"`
	Pain        *float64 `json:"pain"`
	Composite   *float64 `json:"wellness_composite"`
	MeanRPE     *float64 `json:"mean_rpe"`
	TotalLoad   float64  `json:"total_load"`
	Records     int      `json:"records"`
	PeriodDays  int      `json:"period_days"`
	AtRisk      bool     `json:"at_risk"`
}

type icsEntryResponse struct {
	AthleteID   string `json:"athlete_id"`
	AthleteName string `json:"athlete_name,omitempty"`
	Date        string `json:"date"`
	Shift       string `json:"shift,omitempty"`
	Class       string `json:"class"`
}

type wellnessAlertResponse struct {
	AthleteID   string  `json:"athlete_id"`
	AthleteName string  `json:"athlete_name,omitempty"`
	Date        string  `json:"date"`
	Index       float64 `json:"index"`
	Flagged     bool    `json:"flagged"`
}

type rosterEntryResponse struct {
	AthleteID   string `json:"athlete_id"`
	AthleteName string `json:"athlete_name"`
}

type summaryResponse struct {
	Period   string `json:"period"`
	Label    string `json:"label"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Empty    bool   `json:"empty"`
	Records  int    `json:"records"`
	Athletes int    `json:"athletes"`

	Wellness metricBlockResponse `json:"wellness"`
	RPE      metricBlockResponse `json:"rpe"`
	Load     metricBlockResponse `json:"load"`
	Pain     metricBlockResponse `json:"pain"`

	AtRisk        int      `json:"at_risk"`
	AtRiskPercent float64  `json:"at_risk_percent"`
	AtRiskIDs     []string `json:"at_risk_ids"`

	ICS struct {
		Red     int `json:"red"`
		Yellow  int `json:"yellow"`
		Green   int `json:"green"`
		Unknown int `json:"unknown"`
	} `json:"ics"`
	ICSList []icsEntryResponse `json:"ics_list"`

	Players []playerResponse `json:"players"`

	PendingCheckIn  []rosterEntryResponse `json:"pending_check_in"`
	PendingCheckOut []rosterEntryResponse `json:"pending_check_out"`

	WellnessThreshold     float64                 `json:"wellness_threshold"`
	WellnessAlerts        []wellnessAlertResponse `json:"wellness_alerts"`
	WellnessFlaggedPct    *float64                `json:"wellness_flagged_percent"`
	WellnessFlaggedAlerts int                     `json:"wellness_flagged"`
}

func newSummaryResponse(d *service.DashboardData) summaryResponse {
	resp := summaryResponse{
		Period:   d.Period.String(),
		Label:    d.Period.Label(),
		Start:    formatDate(d.Start),
		End:      formatDate(d.End),
		Empty:    d.Empty,
		Records:  d.Records,
		Athletes: d.Athletes,

		Wellness: newMetricBlockResponse(d.Wellness),
		RPE:      newMetricBlockResponse(d.RPE),
		Load:     newMetricBlockResponse(d.Load),
		Pain:     newMetricBlockResponse(d.Pain),

		AtRisk:        d.Alerts.AtRisk,
		AtRiskPercent: d.Alerts.Percent,
		AtRiskIDs:     nonNil(d.Alerts.AtRiskIDs),

		ICSList:         make([]icsEntryResponse, 0, len(d.ICSList)),
		Players:         make([]playerResponse, 0, len(d.Players)),
		PendingCheckIn:  newRoster(d.Pending.CheckIn),
		PendingCheckOut: newRoster(d.Pending.CheckOut),

		WellnessThreshold:     d.WellnessAlerts.Threshold,
		WellnessAlerts:        make([]wellnessAlertResponse, 0, len(d.WellnessAlerts.Alerts)),
		WellnessFlaggedPct:    d.WellnessAlerts.FlaggedPercent,
		WellnessFlaggedAlerts: d.WellnessAlerts.FlaggedCount,
	}
	resp.ICS.Red = d.ICS.Red
	resp.ICS.Yellow = d.ICS.Yellow
	resp.ICS.Green = d.ICS.Green
	resp.ICS.Unknown = d.ICS.Unknown

	for _, e := range d.ICSList {
		resp.ICSList = append(resp.ICSList, icsEntryResponse{
			AthleteID:   e.AthleteID,
			AthleteName: e.AthleteName,
			Date:        formatDate(e.Date),
			Shift:       e.Shift.String(),
			Class:       e.Class.String(),
		})
	}
	for _, p := range d.Players {
		resp.Players = append(resp.Players, playerResponse{
			AthleteID:   p.AthleteID,
			AthleteName: p.AthleteName,
			Recovery:    p.Recovery,
			Energy:      p.Energy,
			Sleep:       p.Sleep,
			Stress:      p.Stress,
			Pain:        p.Pain,
			Composite:   p.Composite(),
			MeanRPE:     p.MeanRPE,
			TotalLoad:   p.TotalLoad,
			Records:     p.Records,
			PeriodDays:  p.PeriodDays,
			AtRisk:      p.AtRisk,
		})
	}
	for _, a := range d.WellnessAlerts.Alerts {
		resp.WellnessAlerts = append(resp.WellnessAlerts, wellnessAlertResponse{
			AthleteID:   a.AthleteID,
			AthleteName: a.AthleteName,
			Date:        formatDate(a.Date),
			Index:       a.Index,
			Flagged:     a.Flagged,
		})
	}
	return resp
}

type submitResponse struct {
	Created bool           `json:"created"`
	Record  recordResponse `json:"record"`
}

func newRoster(entries []analysis.RosterEntry) []rosterEntryResponse {
	out := make([]rosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, rosterEntryResponse{AthleteID: e.AthleteID, AthleteName: e.AthleteName})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
