package analysis

import (
	"math"
	"testing"
	"time"

	"fuel-rl/internal/driver"
	"fuel-rl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *model.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ulsp := []float64{100, 105, 102, 102, 108}
	ulsd := []float64{110, 111, 115, 113, 113}
	recs := make([]model.FuelRecord, len(ulsp))
	for i := range recs {
		recs[i] = model.FuelRecord{
			Date:          start.AddDate(0, 0, 7*i),
			PumpPriceULSP: ulsp[i],
			PumpPriceULSD: ulsd[i],
			DutyRateULSP:  52.95,
			DutyRateULSD:  52.95,
			VATRateULSP:   20,
			VATRateULSD:   20,
		}
	}
	return model.MustDataset(recs)
}

func TestDescribe(t *testing.T) {
	cols := Describe(sample())
	require.Len(t, cols, model.ObservationSize)

	p := cols[model.FieldPumpPriceULSP]
	assert.Equal(t, "Pump price (ULSP)", p.Name)
	assert.Equal(t, 5, p.Count)
	assert.InDelta(t, 103.4, p.Mean, 1e-9)
	assert.Equal(t, 100.0, p.Min)
	assert.Equal(t, 108.0, p.Max)
	assert.Equal(t, 102.0, p.P50)
	assert.InDelta(t, 100.4, p.P05, 1e-9)
	// sample standard deviation, as a dataframe reports it
	assert.InDelta(t, math.Sqrt(9.8), p.Std, 1e-9)

	duty := cols[model.FieldDutyRateULSD]
	assert.Equal(t, 0.0, duty.Std)
	assert.Equal(t, 52.95, duty.P95)
}

func TestCorrelation(t *testing.T) {
	c := Correlation(sample())
	r, cc := c.Dims()
	require.Equal(t, model.ObservationSize, r)
	require.Equal(t, model.ObservationSize, cc)
	assert.InDelta(t, 1.0, c.At(0, 0), 1e-9)
	assert.InDelta(t, c.At(0, 1), c.At(1, 0), 1e-12)
	assert.True(t, math.IsNaN(c.At(2, 0)), "constant column")
}

func TestOracleReward(t *testing.T) {
	// steps: max(5,1) + max(3,4) + max(0,2) + max(6,0)
	assert.Equal(t, 17.0, OracleReward(sample()))
	assert.Equal(t, 0.0, OracleReward(sample().Head(1)))
}

func TestComputePotential(t *testing.T) {
	p := ComputePotential(sample())
	assert.Equal(t, 5, p.Rows)
	assert.Equal(t, 4, p.Steps)
	assert.Equal(t, 17.0, p.OracleReward)
	assert.InDelta(t, 14.0/4, p.MeanAbsMoveULSP, 1e-12)
	assert.InDelta(t, 7.0/4, p.MeanAbsMoveULSD, 1e-12)
	assert.Len(t, p.Columns, model.ObservationSize)

	empty := ComputePotential(nil)
	assert.Equal(t, 0, empty.Rows)
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, percentileSorted(vals, 0))
	assert.Equal(t, 4.0, percentileSorted(vals, 1))
	assert.InDelta(t, 2.5, percentileSorted(vals, 0.5), 1e-12)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestRankByAverageReward(t *testing.T) {
	results := []driver.Comparison{
		{Name: "hold", Summary: &driver.Summary{Policy: "hold", AverageReward: 0, Losses: 3}},
		{Name: "oracle", Summary: &driver.Summary{Policy: "oracle", AverageReward: 17, Wins: 3}},
		{Name: "skipped"},
		{Name: "flat", Summary: &driver.Summary{Policy: "constant", AverageReward: 0, Losses: 3}},
	}
	ranked := RankByAverageReward(results, 17)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"oracle", "hold", "flat"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	assert.Equal(t, 1.0, ranked[0].OracleShare)
	assert.Equal(t, 0.0, RankByAverageReward(results, 0)[0].OracleShare)
}
