package model

import (
	"time"

	"vtrader/internal/types"

	"github.com/shopspring/decimal"
)

type Instrument struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Sector    string          `json:"sector"`
	Price     decimal.Decimal `json:"price"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// Holding is a user's position in one instrument, tracked at
// weighted-average cost. A holding with zero quantity is never stored.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

type Account struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	IsAdmin   bool               `json:"is_admin"`
	Balance   decimal.Decimal    `json:"balance"`
	Holdings  map[string]Holding `json:"holdings"`
	CreatedAt time.Time          `json:"created_at"`
}

// Clone returns a deep copy so callers can mutate freely without
// aliasing store-owned state.
func (a Account) Clone() Account {
	out := a
	out.Holdings = make(map[string]Holding, len(a.Holdings))
	for sym, h := range a.Holdings {
		out.Holdings[sym] = h
	}
	return out
}

type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Side      types.Side      `json:"side"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Risk      types.RiskLevel `json:"risk"`
	CreatedAt time.Time       `json:"created_at"`
}

type HoldingValuation struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name,omitempty"`
	Quantity     int64           `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	PL           decimal.Decimal `json:"pl"`
	PLPct        decimal.Decimal `json:"pl_pct"`
}

type PortfolioValuation struct {
	Holdings    []HoldingValuation `json:"holdings"`
	MarketValue decimal.Decimal    `json:"market_value"`
	CostBasis   decimal.Decimal    `json:"cost_basis"`
	PL          decimal.Decimal    `json:"pl"`
	PLPct       decimal.Decimal    `json:"pl_pct"`
}

type AdminStats struct {
	UserCount       int             `json:"total_user_count"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	InstrumentCount int             `json:"total_instruments"`
}
