package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"squadload/internal/analysis"
)

// maxLineSize bounds a single JSONL line
const maxLineSize = 1 << 20

// ImportResult counts what ImportJSONL did with each line
type ImportResult struct {
	Lines   int // non-blank lines read
	Created int
	Merged  int
	Skipped int // malformed JSON, or no athlete id or date
}

// ImportJSONL reads one raw record per line and merges each into the store.
// Malformed lines are skipped and counted. The whole file is applied in a
// single transaction.
func (s *Store) ImportJSONL(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res = ImportResult{}
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			res.Lines++

			rec, ok := decodeLine(line)
			if !ok {
				res.Skipped++
				continue
			}
			up, err := upsertRecordTx(ctx, tx, rec)
			if err != nil {
				return fmt.Errorf("line %d: %w", res.Lines, err)
			}
			if up.Created {
				res.Created++
			} else {
				res.Merged++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading import: %w", err)
		}
		return nil
	})
	return res, err
}

func decodeLine(line []byte) (analysis.Record, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var raw analysis.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return analysis.Record{}, false
	}
	return analysis.NormalizeRecord(raw)
}

// ExportJSONL writes every stored record as one JSON line and returns the
// number of lines written.
func (s *Store) ExportJSONL(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.ListRecords(ctx, RecordQuery{})
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, rec := range records {
		if err := enc.Encode(newRecordLine(rec)); err != nil {
			return i, fmt.Errorf("encoding record %s: %w", rec.Identity(), err)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(records), fmt.Errorf("writing export: %w", err)
	}
	return len(records), nil
}
