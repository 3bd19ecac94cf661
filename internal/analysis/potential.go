package analysis

import (
	"math"
	"sort"
	"time"

	"fuel-rl/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ColumnStats mirrors a dataframe describe() row for one dataset column.
type ColumnStats struct {
	Field model.Field `json:"-"`
	Name  string      `json:"name"`
	Count int         `json:"count"`
	Mean  float64     `json:"mean"`
	Std   float64     `json:"std"`
	Min   float64     `json:"min"`
	P05   float64     `json:"p05"`
	P50   float64     `json:"p50"`
	P95   float64     `json:"p95"`
	Max   float64     `json:"max"`
}

// Potential summarizes how much reward a dataset offers at all.
type Potential struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rows  int       `json:"rows"`
	Steps int       `json:"steps"`

	MeanAbsMoveULSP float64 `json:"mean_abs_move_ulsp"`
	MeanAbsMoveULSD float64 `json:"mean_abs_move_ulsd"`

	// OracleReward is the best achievable single-episode reward:
	// every step captures the larger absolute move of the two fuels.
	OracleReward float64 `json:"oracle_reward"`

	Columns []ColumnStats `json:"columns"`
}

func Describe(ds *model.Dataset) []ColumnStats {
	out := make([]ColumnStats, 0, model.ObservationSize)
	if ds.Len() == 0 {
		return out
	}
	for _, f := range model.Fields() {
		vals := ds.Column(f)
		s := ColumnStats{Field: f, Name: f.String(), Count: len(vals)}
		s.Mean, s.Std = stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			s.Std = 0
		}
		sort.Float64s(vals)
		s.Min = floats.Min(vals)
		s.Max = floats.Max(vals)
		s.P05 = percentileSorted(vals, 0.05)
		s.P50 = percentileSorted(vals, 0.50)
		s.P95 = percentileSorted(vals, 0.95)
		out = append(out, s)
	}
	return out
}

// Correlation returns the 6x6 Pearson correlation matrix of the observation
// columns. Constant columns (flat duty or VAT) correlate as NaN.
func Correlation(ds *model.Dataset) *mat.SymDense {
	n := ds.Len()
	if n < 2 {
		return mat.NewSymDense(model.ObservationSize, nil)
	}
	x := mat.NewDense(n, model.ObservationSize, nil)
	for i := 0; i < n; i++ {
		obs := ds.Observation(i)
		x.SetRow(i, obs[:])
	}
	var c mat.SymDense
	stat.CorrelationMatrix(&c, x, nil)
	return &c
}

// OracleReward is the sum over steps of max(0, |ΔULSP|, |ΔULSD|).
func OracleReward(ds *model.Dataset) float64 {
	total := 0.0
	for i := 0; i+1 < ds.Len(); i++ {
		prev, curr := ds.Record(i), ds.Record(i+1)
		dP := math.Abs(curr.PumpPriceULSP - prev.PumpPriceULSP)
		dD := math.Abs(curr.PumpPriceULSD - prev.PumpPriceULSD)
		total += math.Max(dP, dD)
	}
	return total
}

func ComputePotential(ds *model.Dataset) Potential {
	p := Potential{Rows: ds.Len()}
	if ds.Len() == 0 {
		return p
	}
	p.Start, p.End = ds.Start(), ds.End()
	p.Columns = Describe(ds)
	if ds.Len() < 2 {
		return p
	}
	p.Steps = ds.Len() - 1

	sumP, sumD := 0.0, 0.0
	for i := 0; i < p.Steps; i++ {
		prev, curr := ds.Record(i), ds.Record(i+1)
		sumP += math.Abs(curr.PumpPriceULSP - prev.PumpPriceULSP)
		sumD += math.Abs(curr.PumpPriceULSD - prev.PumpPriceULSD)
	}
	p.MeanAbsMoveULSP = sumP / float64(p.Steps)
	p.MeanAbsMoveULSD = sumD / float64(p.Steps)
	p.OracleReward = OracleReward(ds)
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
