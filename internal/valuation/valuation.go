package valuation

import (
	"sort"

	"vtrader/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValueHolding prices one holding against the given price table. A
// delisted instrument falls back to the holding's average cost, which
// values it at cost basis with zero profit/loss.
func ValueHolding(h model.Holding, prices map[string]decimal.Decimal) model.HoldingValuation {
	currentPrice, ok := prices[h.Symbol]
	if !ok {
		currentPrice = h.AvgPrice
	}
	qty := decimal.NewFromInt(h.Quantity)
	marketValue := qty.Mul(currentPrice)
	costBasis := qty.Mul(h.AvgPrice)
	pl := marketValue.Sub(costBasis)
	plPct := decimal.Zero
	if !costBasis.IsZero() {
		plPct = pl.Div(costBasis).Mul(hundred)
	}
	return model.HoldingValuation{
		Symbol:       h.Symbol,
		Quantity:     h.Quantity,
		AvgPrice:     h.AvgPrice,
		CurrentPrice: currentPrice,
		MarketValue:  marketValue,
		CostBasis:    costBasis,
		PL:           pl,
		PLPct:        plPct,
	}
}

// ValuePortfolio aggregates per-holding valuations. The aggregate
// percentage uses the aggregate cost basis as denominator and is zero
// for an empty portfolio.
func ValuePortfolio(acc model.Account, prices map[string]decimal.Decimal) model.PortfolioValuation {
	out := model.PortfolioValuation{
		Holdings:    make([]model.HoldingValuation, 0, len(acc.Holdings)),
		MarketValue: decimal.Zero,
		CostBasis:   decimal.Zero,
		PL:          decimal.Zero,
		PLPct:       decimal.Zero,
	}
	for _, h := range acc.Holdings {
		hv := ValueHolding(h, prices)
		out.Holdings = append(out.Holdings, hv)
		out.MarketValue = out.MarketValue.Add(hv.MarketValue)
		out.CostBasis = out.CostBasis.Add(hv.CostBasis)
	}
	sort.Slice(out.Holdings, func(i, j int) bool { return out.Holdings[i].Symbol < out.Holdings[j].Symbol })
	out.PL = out.MarketValue.Sub(out.CostBasis)
	if !out.CostBasis.IsZero() {
		out.PLPct = out.PL.Div(out.CostBasis).Mul(hundred)
	}
	return out
}
