package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Dataset is an immutable, strictly time-ordered sequence of fuel records.
// It is safe to share between goroutines; environments only read from it.
type Dataset struct {
	records []FuelRecord
}

// NewDataset validates and copies records.
// Dates must be strictly increasing and every numeric field finite.
// Zero dates are allowed (synthetic data) as long as all dates are zero.
func NewDataset(records []FuelRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("dataset has no records")
	}
	dated := !records[0].Date.IsZero()
	for i, r := range records {
		if err := validateRecord(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if r.Date.IsZero() == dated {
			return nil, fmt.Errorf("record %d: dates must be set on every record or none", i)
		}
		if dated && i > 0 && !r.Date.After(records[i-1].Date) {
			return nil, fmt.Errorf("record %d: date %s is not after %s",
				i, r.Date.Format(time.DateOnly), records[i-1].Date.Format(time.DateOnly))
		}
	}
	out := make([]FuelRecord, len(records))
	copy(out, records)
	return &Dataset{records: out}, nil
}

// MustDataset is NewDataset for fixtures; it panics on invalid input.
func MustDataset(records []FuelRecord) *Dataset {
	ds, err := NewDataset(records)
	if err != nil {
		panic(err)
	}
	return ds
}

func validateRecord(r FuelRecord) error {
	for i, v := range r.Observation() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite", Field(i))
		}
	}
	return nil
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Record returns the i-th record. It panics when i is out of range,
// like a slice index.
func (d *Dataset) Record(i int) FuelRecord {
	return d.records[i]
}

func (d *Dataset) Observation(i int) Observation {
	return d.records[i].Observation()
}

// Records returns a copy of all records.
func (d *Dataset) Records() []FuelRecord {
	out := make([]FuelRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Column returns one field across all records.
func (d *Dataset) Column(f Field) []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.Observation()[f]
	}
	return out
}

// Head returns a dataset of the first n records (all when n <= 0 or n >= Len).
func (d *Dataset) Head(n int) *Dataset {
	if n <= 0 || n >= len(d.records) {
		return d
	}
	return &Dataset{records: d.records[:n:n]}
}

// Start and End return the first and last dates (zero for undated data).
func (d *Dataset) Start() time.Time { return d.records[0].Date }
func (d *Dataset) End() time.Time   { return d.records[len(d.records)-1].Date }
