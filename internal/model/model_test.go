package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week(n int) time.Time {
	return time.Date(2003, 6, 9, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n)
}

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"HOLD":      ActionHold,
		"buy_ulsp":  ActionBuyULSP,
		"sell-ulsp": ActionSellULSP,
		"BUY_ULSD":  ActionBuyULSD,
		"4":         ActionSellULSD,
		" 0 ":       ActionHold,
	}
	for in, want := range cases {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "5", "-1", "short", "1.0"} {
		_, err := ParseAction(bad)
		assert.Error(t, err, bad)
	}
}

func TestActionJSONUsesStableNames(t *testing.T) {
	raw, err := json.Marshal(map[string]Action{"a": ActionSellULSD})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"SELL_ULSD"}`, string(raw))

	var back map[string]Action
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ActionSellULSD, back["a"])

	_, err = json.Marshal(Action(9))
	assert.Error(t, err)
}

func TestActionFuel(t *testing.T) {
	f, long, ok := ActionBuyULSD.Fuel()
	assert.True(t, ok)
	assert.True(t, long)
	assert.Equal(t, FuelULSD, f)

	f, long, ok = ActionSellULSP.Fuel()
	assert.True(t, ok)
	assert.False(t, long)
	assert.Equal(t, FuelULSP, f)

	_, _, ok = ActionHold.Fuel()
	assert.False(t, ok)
}

func TestObservationOrder(t *testing.T) {
	r := FuelRecord{
		PumpPriceULSP: 1, PumpPriceULSD: 2,
		DutyRateULSP: 3, DutyRateULSD: 4,
		VATRateULSP: 5, VATRateULSD: 6,
	}
	obs := r.Observation()
	assert.Equal(t, Observation{1, 2, 3, 4, 5, 6}, obs)
	assert.Equal(t, 2.0, obs.Price(FuelULSD))
	assert.Equal(t, 1.0, obs.Price(FuelULSP))
	assert.Equal(t, "Duty rate (ULSD)", FieldDutyRateULSD.String())
	assert.Equal(t, r, RecordFromObservation(time.Time{}, obs))
}

func TestNewDataset(t *testing.T) {
	t.Run("copies input", func(t *testing.T) {
		in := []FuelRecord{{Date: week(0), PumpPriceULSP: 100}, {Date: week(1), PumpPriceULSP: 101}}
		ds, err := NewDataset(in)
		require.NoError(t, err)
		in[0].PumpPriceULSP = 999
		assert.Equal(t, 100.0, ds.Record(0).PumpPriceULSP)
		assert.Equal(t, 2, ds.Len())
		assert.Equal(t, []float64{100, 101}, ds.Column(FieldPumpPriceULSP))
	})

	t.Run("undated records", func(t *testing.T) {
		_, err := NewDataset([]FuelRecord{{PumpPriceULSP: 1}, {PumpPriceULSP: 2}})
		assert.NoError(t, err)
	})

	t.Run("rejects", func(t *testing.T) {
		cases := map[string][]FuelRecord{
			"empty":         nil,
			"not increasing": {{Date: week(1)}, {Date: week(1)}},
			"backwards":     {{Date: week(2)}, {Date: week(1)}},
			"mixed dates":   {{Date: week(0)}, {}},
			"nan":           {{PumpPriceULSD: math.NaN()}},
			"inf":           {{VATRateULSP: math.Inf(1)}},
		}
		for name, recs := range cases {
			_, err := NewDataset(recs)
			assert.Error(t, err, name)
		}
	})
}

func TestDatasetHead(t *testing.T) {
	ds := MustDataset([]FuelRecord{{Date: week(0)}, {Date: week(1)}, {Date: week(2)}})
	assert.Equal(t, 2, ds.Head(2).Len())
	assert.Equal(t, 3, ds.Head(0).Len())
	assert.Equal(t, 3, ds.Head(10).Len())
	assert.Equal(t, week(0), ds.Start())
	assert.Equal(t, week(2), ds.End())
}
