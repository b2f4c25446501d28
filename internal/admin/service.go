package admin

import (
	"context"

	"vtrader/internal/ledger"
	"vtrader/internal/market"
	"vtrader/internal/model"
	"vtrader/internal/valuation"

	"github.com/shopspring/decimal"
)

// Service computes fleet-wide statistics by folding over all ledgers
// against the current price snapshot. Admin accounts are excluded from
// user counts and invested totals.
type Service struct {
	store ledger.Store
	board *market.Board
}

func NewService(store ledger.Store, board *market.Board) *Service {
	return &Service{store: store, board: board}
}

func (s *Service) Stats(ctx context.Context) (model.AdminStats, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return model.AdminStats{}, err
	}
	prices := s.board.Prices()
	stats := model.AdminStats{
		TotalInvested:   decimal.Zero,
		InstrumentCount: s.board.Size(),
	}
	for _, acc := range accounts {
		if acc.IsAdmin {
			continue
		}
		stats.UserCount++
		stats.TotalInvested = stats.TotalInvested.Add(valuation.ValuePortfolio(acc, prices).MarketValue)
	}
	return stats, nil
}

// ListUsers returns all non-admin accounts.
func (s *Service) ListUsers(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.IsAdmin {
			continue
		}
		out = append(out, acc)
	}
	return out, nil
}
