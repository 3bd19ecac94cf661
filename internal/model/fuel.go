package model

import (
	"fmt"
	"strings"
	"time"
)

// Fuel identifies one of the two traded products.
type Fuel string

const (
	FuelULSP Fuel = "ULSP" // ultra low sulphur petrol
	FuelULSD Fuel = "ULSD" // ultra low sulphur diesel
)

func ParseFuel(s string) (Fuel, error) {
	switch Fuel(strings.ToUpper(strings.TrimSpace(s))) {
	case FuelULSP:
		return FuelULSP, nil
	case FuelULSD:
		return FuelULSD, nil
	}
	return "", fmt.Errorf("unknown fuel %q (want ULSP or ULSD)", s)
}

// FuelRecord is one weekly row of the road fuel price dataset.
// Prices and duties are in pence/litre, VAT in percent.
type FuelRecord struct {
	Date time.Time `json:"date"`

	PumpPriceULSP float64 `json:"pump_price_ulsp"`
	PumpPriceULSD float64 `json:"pump_price_ulsd"`
	DutyRateULSP  float64 `json:"duty_rate_ulsp"`
	DutyRateULSD  float64 `json:"duty_rate_ulsd"`
	VATRateULSP   float64 `json:"vat_rate_ulsp"`
	VATRateULSD   float64 `json:"vat_rate_ulsd"`
}

// Price returns the pump price of the given fuel.
func (r FuelRecord) Price(f Fuel) float64 {
	if f == FuelULSD {
		return r.PumpPriceULSD
	}
	return r.PumpPriceULSP
}

// Observation returns the record's six numeric fields in observation order.
func (r FuelRecord) Observation() Observation {
	return Observation{
		r.PumpPriceULSP,
		r.PumpPriceULSD,
		r.DutyRateULSP,
		r.DutyRateULSD,
		r.VATRateULSP,
		r.VATRateULSD,
	}
}

// RecordFromObservation is the inverse of FuelRecord.Observation.
func RecordFromObservation(date time.Time, o Observation) FuelRecord {
	return FuelRecord{
		Date:          date,
		PumpPriceULSP: o[FieldPumpPriceULSP],
		PumpPriceULSD: o[FieldPumpPriceULSD],
		DutyRateULSP:  o[FieldDutyRateULSP],
		DutyRateULSD:  o[FieldDutyRateULSD],
		VATRateULSP:   o[FieldVATRateULSP],
		VATRateULSD:   o[FieldVATRateULSD],
	}
}

// ObservationSize is the length of an Observation vector.
const ObservationSize = 6

// Observation is the environment state at a step:
// [ULSP price, ULSD price, ULSP duty, ULSD duty, ULSP VAT, ULSD VAT].
type Observation [ObservationSize]float64

// Field indexes into an Observation.
type Field int

const (
	FieldPumpPriceULSP Field = iota
	FieldPumpPriceULSD
	FieldDutyRateULSP
	FieldDutyRateULSD
	FieldVATRateULSP
	FieldVATRateULSD
)

var fieldNames = [ObservationSize]string{
	"Pump price (ULSP)",
	"Pump price (ULSD)",
	"Duty rate (ULSP)",
	"Duty rate (ULSD)",
	"VAT percentage rate (ULSP)",
	"VAT percentage rate (ULSD)",
}

// Fields lists the observation fields in order.
func Fields() []Field {
	out := make([]Field, ObservationSize)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// String returns the dataset column name of the field.
func (f Field) String() string {
	if f < 0 || int(f) >= ObservationSize {
		return fmt.Sprintf("FIELD(%d)", int(f))
	}
	return fieldNames[f]
}

// PriceField returns the observation field holding the pump price of f.
func PriceField(f Fuel) Field {
	if f == FuelULSD {
		return FieldPumpPriceULSD
	}
	return FieldPumpPriceULSP
}

func (o Observation) Price(f Fuel) float64 {
	return o[PriceField(f)]
}

// Slice returns a copy of the observation as a slice.
func (o Observation) Slice() []float64 {
	out := make([]float64, ObservationSize)
	copy(out, o[:])
	return out
}
