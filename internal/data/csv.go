package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"fuel-rl/internal/logger"
	"fuel-rl/internal/model"
)

// columnAliases maps the long column names of the published weekly road
// fuel prices file onto the short names used throughout the repo.
var columnAliases = map[string]string{
	"Pump price in pence/litre (ULSP)": "Pump price (ULSP)",
	"Pump price in pence/litre (ULSD)": "Pump price (ULSD)",
	"Duty rate in pence/litre (ULSP)":  "Duty rate (ULSP)",
	"Duty rate in pence/litre (ULSD)":  "Duty rate (ULSD)",
}

const dateColumn = "Date"

var dateLayouts = []string{"02/01/2006", time.DateOnly}

// RowError points at the offending line of a CSV input (1-based, header is line 1).
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d column %q: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func canonicalColumn(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

// isIndexColumn matches the unnamed row index a dataframe export leaves
// in the first column.
func isIndexColumn(h string) bool {
	return h == "" || strings.HasPrefix(h, "Unnamed:")
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want dd/mm/yyyy or yyyy-mm-dd)", s)
}

// ParseFuelCSV reads the weekly road fuel price table. Extra columns are
// ignored; the date column and the six observation columns are required.
func ParseFuelCSV(r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv: no header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	indexCol := -1
	for i, h := range header {
		name := canonicalColumn(h)
		if isIndexColumn(name) {
			if indexCol < 0 {
				indexCol = i
			}
			continue
		}
		cols[name] = i
	}
	dateIdx, ok := cols[dateColumn]
	if !ok {
		return nil, fmt.Errorf("missing column %q", dateColumn)
	}
	fieldIdx := make([]int, model.ObservationSize)
	for _, f := range model.Fields() {
		idx, ok := cols[f.String()]
		if !ok {
			return nil, fmt.Errorf("missing column %q", f.String())
		}
		fieldIdx[f] = idx
	}

	var records []model.FuelRecord
	seenIndex := map[string]int{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		if indexCol >= 0 {
			key := strings.TrimSpace(row[indexCol])
			if first, dup := seenIndex[key]; dup && key != "" {
				return nil, &RowError{Line: line, Err: fmt.Errorf("duplicate row index %q (first seen on line %d)", key, first)}
			}
			seenIndex[key] = line
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, &RowError{Line: line, Column: dateColumn, Err: err}
		}
		var obs model.Observation
		for _, f := range model.Fields() {
			raw := strings.TrimSpace(row[fieldIdx[f]])
			if raw == "" {
				return nil, &RowError{Line: line, Column: f.String(), Err: errors.New("missing value")}
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &RowError{Line: line, Column: f.String(), Err: err}
			}
			obs[f] = v
		}
		if n := len(records); n > 0 && !date.After(records[n-1].Date) {
			return nil, &RowError{Line: line, Column: dateColumn, Err: fmt.Errorf("date %s does not follow %s", date.Format(time.DateOnly), records[n-1].Date.Format(time.DateOnly))}
		}
		records = append(records, model.RecordFromObservation(date, obs))
	}

	return model.NewDataset(records)
}

// LoadFuelCSV parses the CSV file at path.
func LoadFuelCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ParseFuelCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log := logger.For("data")
	log.Info().Str("path", path).Int("rows", ds.Len()).
		Time("start", ds.Start()).Time("end", ds.End()).
		Msg("loaded fuel prices")
	return ds, nil
}

// WriteFuelCSV writes ds with the short column names and ISO dates, in a
// form ParseFuelCSV reads back.
func WriteFuelCSV(out io.Writer, ds *model.Dataset) error {
	w := csv.NewWriter(out)
	header := []string{dateColumn}
	for _, f := range model.Fields() {
		header = append(header, f.String())
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range ds.Records() {
		row := []string{rec.Date.Format(time.DateOnly)}
		for _, v := range rec.Observation() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
