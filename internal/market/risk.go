package market

import (
	"vtrader/internal/types"

	"github.com/shopspring/decimal"
)

var (
	riskHighThreshold     = decimal.NewFromFloat(0.25)
	riskModerateThreshold = decimal.NewFromFloat(0.10)
)

// Classify derives the qualitative risk label from the deviation of the
// current price against the bootstrap reference price. The label is
// informational only and never blocks a trade.
func Classify(current, reference decimal.Decimal) types.RiskLevel {
	if reference.LessThanOrEqual(decimal.Zero) {
		return types.RiskLow
	}
	deviation := current.Sub(reference).Abs().Div(reference)
	switch {
	case deviation.GreaterThan(riskHighThreshold):
		return types.RiskHigh
	case deviation.GreaterThan(riskModerateThreshold):
		return types.RiskModerate
	default:
		return types.RiskLow
	}
}

// ClassifySymbol looks up the board baseline for symbol. Unknown symbols
// classify as Low; the ledger rejects them before a trade is recorded.
func (b *Board) ClassifySymbol(symbol string, current decimal.Decimal) types.RiskLevel {
	ref, ok := b.Baseline(symbol)
	if !ok {
		return types.RiskLow
	}
	return Classify(current, ref)
}
