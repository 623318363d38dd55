package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

// maxBodySize bounds submission payloads
const maxBodySize = 64 * 1024

type handler struct {
	ingest *service.IngestService
	query  *service.QueryService
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	data, err := h.query.GetDashboardData(r.Context(), r.URL.Query().Get("period"))
	if errors.Is(err, analysis.ErrUnknownPeriod) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		log.Errorf("summary: %s", err)
		writeError(w, http.StatusInternalServerError, errors.New("summary failed"))
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(data))
}

func (h *handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	weight, err := parseWeightParam(q.Get("weight"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	asOf, err := parseDateParam(q.Get("as_of"), "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	board, err := h.query.GetRiskBoard(r.Context(), weight, asOf)
	if err != nil {
		log.Errorf("risk board: %s", err)
		writeError(w, http.StatusInternalServerError, errors.New("risk board failed"))
		return
	}
	writeJSON(w, http.StatusOK, newRiskBoardResponse(board))
}

func (h *handler) handleAthleteLoad(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()
	weight, err := parseWeightParam(q.Get("weight"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	asOf, err := parseDateParam(q.Get("as_of"), "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.query.GetAthleteReport(r.Context(), id, weight, asOf)
	if errors.Is(err, service.ErrUnknownAthlete) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		log.Errorf("athlete %s load: %s", id, err)
		writeError(w, http.StatusInternalServerError, errors.New("athlete report failed"))
		return
	}
	writeJSON(w, http.StatusOK, newAthleteLoadResponse(report))
}

func (h *handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter analysis.LoadFilter
	filter.Athletes = splitList(q.Get("athletes"))
	for _, s := range splitList(q.Get("shifts")) {
		shift := analysis.ParseShift(s)
		if shift == analysis.ShiftUnknown {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown shift %q", s))
			return
		}
		filter.Shifts = append(filter.Shifts, shift)
	}

	var err error
	if filter.Start, err = parseDateParam(q.Get("from"), "from"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.End, err = parseDateParam(q.Get("to"), "to"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.query.GetLoadReport(r.Context(), filter)
	if err != nil {
		log.Errorf("load report: %s", err)
		writeError(w, http.StatusInternalServerError, errors.New("load report failed"))
		return
	}
	writeJSON(w, http.StatusOK, newLoadReportResponse(report))
}

func (h *handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	athletes, err := h.query.GetRoster(r.Context())
	if err != nil {
		log.Errorf("roster: %s", err)
		writeError(w, http.StatusInternalServerError, errors.New("roster failed"))
		return
	}
	resp := make([]rosterEntryResponse, 0, len(athletes))
	for _, a := range athletes {
		resp = append(resp, rosterEntryResponse{AthleteID: a.ID, AthleteName: a.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var c service.CheckIn
	if !decodeBody(w, r, &c) {
		return
	}
	res, err := h.ingest.SubmitCheckIn(r.Context(), c)
	writeSubmit(w, res, err)
}

func (h *handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var c service.CheckOut
	if !decodeBody(w, r, &c) {
		return
	}
	res, err := h.ingest.SubmitCheckOut(r.Context(), c)
	writeSubmit(w, res, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed body: %w", err))
		return false
	}
	return true
}

func writeSubmit(w http.ResponseWriter, res *service.SubmitResult, err error) {
	if errors.Is(err, service.ErrInvalidSubmission) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:    service.ErrInvalidSubmission.Error(),
			Problems: service.Problems(err),
		})
		return
	}
	if err != nil {
		log.Errorf("submission: %s", err)
		writeError(w, http.StatusInternalServerError, errors.New("storing submission failed"))
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, submitResponse{Created: res.Created, Record: newRecordResponse(res.Record)})
}

// parseWeightParam returns nil for an empty value, meaning the configured weight
func parseWeightParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return nil, fmt.Errorf("weight must be a number between 0 and 1, got %q", raw)
	}
	return &v, nil
}

func parseDateParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, raw)
	}
	return t, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}
