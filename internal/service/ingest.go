package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"squadload/internal/analysis"
	"squadload/internal/metrics"
	"squadload/internal/store"
)

// IngestService validates submissions and merges them into the store
type IngestService struct {
	store   *store.Store
	metrics *metrics.Manager
}

// NewIngestService creates a new ingest service
func NewIngestService(s *store.Store, m *metrics.Manager) *IngestService {
	return &IngestService{store: s, metrics: m}
}

// SubmitResult is the stored record after merging a submission
type SubmitResult struct {
	Record  analysis.Record
	Created bool
}

// SubmitCheckIn validates and stores a check-in. A check-out already stored
// for the same athlete, day and shift is kept and merged.
func (s *IngestService) SubmitCheckIn(ctx context.Context, c CheckIn) (*SubmitResult, error) {
	rec, err := ValidateCheckIn(c)
	if err != nil {
		s.count(KindCheckIn, OutcomeInvalid)
		return nil, err
	}
	return s.submit(ctx, KindCheckIn, rec)
}

// SubmitCheckOut validates and stores a check-out
func (s *IngestService) SubmitCheckOut(ctx context.Context, c CheckOut) (*SubmitResult, error) {
	rec, err := ValidateCheckOut(c)
	if err != nil {
		s.count(KindCheckOut, OutcomeInvalid)
		return nil, err
	}
	return s.submit(ctx, KindCheckOut, rec)
}

func (s *IngestService) submit(ctx context.Context, kind string, rec analysis.Record) (*SubmitResult, error) {
	log := logrus.WithFields(logrus.Fields{
		"kind":         kind,
		"athlete_id":   rec.AthleteID,
		"session_date": rec.SessionDate.Format("2006-01-02"),
		"shift":        rec.Shift.String(),
	})

	res, err := s.store.UpsertRecord(ctx, rec)
	if err != nil {
		s.count(kind, OutcomeFailed)
		log.WithError(err).Error("storing submission")
		return nil, fmt.Errorf("storing %s: %w", kind, err)
	}

	outcome := OutcomeMerged
	if res.Created {
		outcome = OutcomeCreated
	}
	s.count(kind, outcome)
	log.WithField("outcome", outcome).Info("submission stored")

	return &SubmitResult{Record: res.Record, Created: res.Created}, nil
}

// ImportFile merges a JSONL file of raw records into the store
func (s *IngestService) ImportFile(ctx context.Context, path string) (store.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.ImportResult{}, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	res, err := s.Import(ctx, f)
	if err != nil {
		return res, fmt.Errorf("importing %s: %w", path, err)
	}
	return res, nil
}

// Import merges JSONL records read from r
func (s *IngestService) Import(ctx context.Context, r io.Reader) (store.ImportResult, error) {
	res, err := s.store.ImportJSONL(ctx, r)
	if err != nil {
		s.count(KindImport, OutcomeFailed)
		logrus.WithError(err).Error("import failed")
		return res, err
	}

	s.metrics.CounterImportedLines.WithLabelValues(OutcomeCreated).Add(float64(res.Created))
	s.metrics.CounterImportedLines.WithLabelValues(OutcomeMerged).Add(float64(res.Merged))
	s.metrics.CounterImportedLines.WithLabelValues("skipped").Add(float64(res.Skipped))

	log := logrus.WithFields(logrus.Fields{
		"lines":   res.Lines,
		"created": res.Created,
		"merged":  res.Merged,
		"skipped": res.Skipped,
	})
	if res.Skipped > 0 {
		log.Warn("import finished with skipped lines")
	} else {
		log.Info("import finished")
	}
	return res, nil
}

// Export writes every stored record to w as JSONL
func (s *IngestService) Export(ctx context.Context, w io.Writer) (int, error) {
	return s.store.ExportJSONL(ctx, w)
}

func (s *IngestService) count(kind, outcome string) {
	s.metrics.CounterSubmissions.WithLabelValues(kind, outcome).Inc()
}
