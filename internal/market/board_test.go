package market

import (
	"testing"

	"vtrader/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBoardPublishSwapsSnapshot(t *testing.T) {
	board := NewBoard([]model.Instrument{
		{Symbol: "TCS", Price: decimal.NewFromInt(100)},
		{Symbol: "INFY", Price: decimal.NewFromInt(200)},
	})

	before := board.Prices()
	board.Publish(map[string]decimal.Decimal{
		"TCS":  decimal.NewFromInt(110),
		"INFY": decimal.NewFromInt(190),
	})

	// A snapshot held across a publish keeps its old values.
	require.True(t, before["TCS"].Equal(decimal.NewFromInt(100)))
	p, ok := board.Get("TCS")
	require.True(t, ok)
	require.True(t, p.Equal(decimal.NewFromInt(110)))
}

func TestBoardInstrumentsSortedWithCurrentPrices(t *testing.T) {
	board := NewBoard([]model.Instrument{
		{Symbol: "INFY", Name: "Infosys", Price: decimal.NewFromInt(200)},
		{Symbol: "TCS", Name: "Tata Consultancy Services", Price: decimal.NewFromInt(100)},
	})
	board.Publish(map[string]decimal.Decimal{
		"TCS":  decimal.NewFromInt(123),
		"INFY": decimal.NewFromInt(201),
	})

	instruments := board.Instruments()
	require.Len(t, instruments, 2)
	require.Equal(t, "INFY", instruments[0].Symbol)
	require.Equal(t, "TCS", instruments[1].Symbol)
	require.True(t, instruments[1].Price.Equal(decimal.NewFromInt(123)))
}

func TestBoardBaselineDefaultsToSeedPrice(t *testing.T) {
	board := NewBoard([]model.Instrument{
		{Symbol: "TCS", Price: decimal.NewFromInt(100)},
	})
	ref, ok := board.Baseline("TCS")
	require.True(t, ok)
	require.True(t, ref.Equal(decimal.NewFromInt(100)))

	board.Publish(map[string]decimal.Decimal{"TCS": decimal.NewFromInt(500)})
	ref, _ = board.Baseline("TCS")
	require.True(t, ref.Equal(decimal.NewFromInt(100)), "baseline is immutable after bootstrap")
}

func TestSeedInstruments(t *testing.T) {
	seed := SeedInstruments()
	require.Len(t, seed, 8)
	for _, inst := range seed {
		require.NotEmpty(t, inst.Symbol)
		require.NotEmpty(t, inst.Name)
		require.True(t, inst.Price.IsPositive())
	}
}
