package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"squadload/internal/analysis"
	"squadload/internal/api"
	"squadload/internal/service"
	"squadload/internal/synthetic"
	"squadload/internal/tui"
)

const dateLayout = "2006-01-02"

// unset marks an int flag the user did not pass
const unset = -999

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and /metrics",
	Long: `Serve the analytics over HTTP for the web presentation layer.

Examples:
  squadload serve
  squadload serve --addr :9090`,
	RunE: runServe,
}

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import line-delimited JSON records",
	Long: `Import records, one JSON object per line. Canonical and legacy field names
are accepted. Every line is merged by athlete, day and shift; malformed lines
are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [file.jsonl]",
	Short: "Export every stored record as line-delimited JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var checkInCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Submit a pre-training wellness check-in",
	Long: `Submit a check-in. Scores are 1 (best) to 5 (worst).

Example:
  squadload checkin --athlete 7 --name "Ana" --recovery 2 --energy 2 --sleep 3 --stress 2 --pain 2 --parts calf`,
	RunE: runCheckIn,
}

var checkOutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Submit a post-training load check-out",
	Long: `Submit a check-out. Internal load is minutes x RPE.

Example:
  squadload checkout --athlete 7 --minutes 90 --rpe 7`,
	RunE: runCheckOut,
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Print the team risk board",
	RunE:  runRisk,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with a synthetic squad",
	RunE:  runSeed,
}

var (
	tuiPeriod string

	serveAddr string

	formAthlete  string
	formName     string
	formDate     string
	formShift    string
	formRecovery int
	formEnergy   int
	formSleep    int
	formStress   int
	formPain     int
	formParts    []string
	formMatchday int
	formPeriod   bool
	formNote     string
	formMinutes  int
	formRPE      int

	riskWeight float64
	riskAsOf   string
	riskFormat string

	seedOpts = synthetic.DefaultOptions()
	seedEnd  string
)

func init() {
	rootCmd.AddCommand(tuiCmd, serveCmd, importCmd, exportCmd, checkInCmd, checkOutCmd, riskCmd, seedCmd)

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&tuiPeriod, "period", "", "initial period: today, last_day, week, month")
	}

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")

	for _, c := range []*cobra.Command{checkInCmd, checkOutCmd} {
		c.Flags().StringVar(&formAthlete, "athlete", "", "athlete id")
		c.Flags().StringVar(&formName, "name", "", "athlete display name")
		c.Flags().StringVar(&formDate, "date", "", "session date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&formShift, "shift", "1", "session shift (1-3)")
		_ = c.MarkFlagRequired("athlete")
	}
	checkInCmd.Flags().IntVar(&formRecovery, "recovery", 0, "recovery 1-5")
	checkInCmd.Flags().IntVar(&formEnergy, "energy", 0, "fatigue 1-5")
	checkInCmd.Flags().IntVar(&formSleep, "sleep", 0, "sleep 1-5")
	checkInCmd.Flags().IntVar(&formStress, "stress", 0, "stress 1-5")
	checkInCmd.Flags().IntVar(&formPain, "pain", 0, "pain 1-5")
	checkInCmd.Flags().StringSliceVar(&formParts, "parts", nil, "painful body parts, required when pain > 1")
	checkInCmd.Flags().IntVar(&formMatchday, "md", unset, "days relative to matchday (default from team.match_day)")
	checkInCmd.Flags().BoolVar(&formPeriod, "menstrual", false, "in menstrual period")
	checkInCmd.Flags().StringVar(&formNote, "note", "", "free-text note")

	checkOutCmd.Flags().IntVar(&formMinutes, "minutes", 0, "session minutes")
	checkOutCmd.Flags().IntVar(&formRPE, "rpe", 0, "session RPE 1-10")

	riskCmd.Flags().Float64Var(&riskWeight, "weight", -1, "ACWR weight 0-1 (default risk.acwr_weight)")
	riskCmd.Flags().StringVar(&riskAsOf, "as-of", "", "reference day YYYY-MM-DD (default last day with data)")
	riskCmd.Flags().StringVar(&riskFormat, "format", formatTable, "output format: table, json")

	seedCmd.Flags().IntVar(&seedOpts.Athletes, "athletes", synthetic.DefaultAthletes, "squad size")
	seedCmd.Flags().IntVar(&seedOpts.Days, "days", synthetic.DefaultDays, "days of history")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", synthetic.DefaultSeed, "random seed")
	seedCmd.Flags().Float64Var(&seedOpts.MissRate, "miss-rate", synthetic.DefaultMissRate, "chance a form is not submitted")
	seedCmd.Flags().StringVar(&seedEnd, "end", "", "last generated day YYYY-MM-DD (default today)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if tuiPeriod != "" {
		if _, err := analysis.ParsePeriod(tuiPeriod); err != nil {
			return err
		}
	}

	p := tea.NewProgram(tui.NewApp(e.query, e.cfg.Team.Name, tuiPeriod), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(e.ingest, e.query, e.metrics, e.registry)
	return api.NewServer(addr, router).Serve(ctx)
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.ingest.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Read %s lines: %d new records, %d merged, %d skipped\n",
		humanize.Comma(int64(res.Lines)), res.Created, res.Merged, res.Skipped)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := e.ingest.Export(cmd.Context(), out)
	if err != nil {
		return err
	}
	if out != os.Stdout {
		fmt.Printf("Exported %s records to %s\n", humanize.Comma(int64(n)), args[0])
	}
	return nil
}

func runCheckIn(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	date := formDateOrToday()
	form := service.CheckIn{
		AthleteID:         formAthlete,
		AthleteName:       formName,
		SessionDate:       date,
		Shift:             formShift,
		Recovery:          formRecovery,
		Energy:            formEnergy,
		Sleep:             formSleep,
		Stress:            formStress,
		Pain:              formPain,
		PainBodyParts:     formParts,
		InMenstrualPeriod: formPeriod,
		Note:              formNote,
	}
	if formMatchday != unset {
		md := formMatchday
		form.TacticalPeriodization = &md
	} else if md, ok := matchdayOffset(e, date); ok {
		form.TacticalPeriodization = &md
	}

	res, err := e.ingest.SubmitCheckIn(cmd.Context(), form)
	return printSubmit(res, err)
}

// matchdayOffset derives the tactical periodization from team.match_day
// when the match is within two weeks of the session
func matchdayOffset(e *env, sessionDate string) (int, bool) {
	match, ok := e.cfg.MatchDay()
	if !ok {
		return 0, false
	}
	day, err := time.Parse(dateLayout, sessionDate)
	if err != nil {
		return 0, false
	}
	offset := int(day.Sub(match).Hours() / 24)
	if offset < -service.MaxMatchdayOffset || offset > service.MaxMatchdayOffset {
		return 0, false
	}
	return offset, true
}

func runCheckOut(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.ingest.SubmitCheckOut(cmd.Context(), service.CheckOut{
		AthleteID:      formAthlete,
		AthleteName:    formName,
		SessionDate:    formDateOrToday(),
		Shift:          formShift,
		SessionMinutes: formMinutes,
		RPE:            formRPE,
	})
	return printSubmit(res, err)
}

func formDateOrToday() string {
	if formDate != "" {
		return formDate
	}
	return time.Now().Format(dateLayout)
}

func printSubmit(res *service.SubmitResult, err error) error {
	if errors.Is(err, service.ErrInvalidSubmission) {
		for _, p := range service.Problems(err) {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
		return service.ErrInvalidSubmission
	}
	if err != nil {
		return err
	}

	r := res.Record
	verb := "Merged into"
	if res.Created {
		verb = "Created"
	}
	fmt.Printf("%s record %s  ICS %s", verb, r.Identity(), analysis.ClassifyICS(r.Scores()))
	if ua := r.InternalLoad(); ua != nil {
		fmt.Printf("  load %.0f UA", *ua)
	}
	fmt.Println()
	return nil
}

// Output formats of commands that print reports
const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown --format %q, want %s or %s", format, formatTable, formatJSON)
	}
}

func runRisk(cmd *cobra.Command, args []string) error {
	if err := checkFormat(riskFormat); err != nil {
		return err
	}
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	var weight *float64
	if riskWeight >= 0 {
		weight = &riskWeight
	}
	var asOf time.Time
	if riskAsOf != "" {
		if asOf, err = time.Parse(dateLayout, riskAsOf); err != nil {
			return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
		}
	}

	board, err := e.query.GetRiskBoard(cmd.Context(), weight, asOf)
	if err != nil {
		return err
	}
	if riskFormat == formatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}
	if len(board.Scores) == 0 {
		fmt.Println("No athletes yet.")
		return nil
	}

	fmt.Printf("Risk board %s  (weight %.2f ACWR / %.2f wellness)\n\n",
		board.ReferenceDay.Format(dateLayout), board.Weight, 1-board.Weight)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ATHLETE\tACWR\tBAND\tACUTE 7D\tCHRONIC 28D\tICS\tRISK\t/10")
	for _, s := range board.Scores {
		name := s.AthleteID
		if s.AthleteName != "" {
			name = s.AthleteName + " (" + s.AthleteID + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\t%s\t%.2f\t%.1f\n",
			name,
			optFloat(s.ACWR(), "%.2f"),
			s.Indices.Band,
			s.Windows.Acute7dSum,
			optFloat(s.Windows.Chronic28dMean, "%.0f"),
			s.ICS,
			s.CombinedRisk,
			s.Score10(),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := board.Summary
	fmt.Printf("\n%d athletes, %d above ACWR %.1f (%s), %d RED check-ins, mean risk %s\n",
		sum.Athletes, sum.DangerCount, analysis.ACWRDangerLow, optFloat(sum.DangerPercent, "%.0f%%"),
		sum.RedCount, optFloat(sum.MeanRisk, "%.2f"))
	return nil
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if seedEnd != "" {
		if seedOpts.End, err = time.Parse(dateLayout, seedEnd); err != nil {
			return fmt.Errorf("--end must be YYYY-MM-DD: %w", err)
		}
	}

	ds := synthetic.Generate(seedOpts)
	res, err := ds.Submit(cmd.Context(), e.ingest)
	if err != nil {
		return err
	}

	names := make([]string, 0, 3)
	for i, r := range ds.Roster {
		if i == 3 {
			break
		}
		names = append(names, r.AthleteName)
	}
	fmt.Printf("Seeded %d athletes (%s, ...): %s records, %s merged submissions\n",
		len(ds.Roster), strings.Join(names, ", "),
		humanize.Comma(int64(res.Created)), humanize.Comma(int64(res.Merged)))
	return nil
}
