package ledger

import (
	"context"
	"time"

	"vtrader/internal/market"
	"vtrader/internal/model"
	"vtrader/internal/types"
	"vtrader/internal/valuation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultLockWait = 5 * time.Second

// Service is the portfolio ledger. It owns per-account serialization:
// at most one trade or funding mutation per account at a time, while
// different accounts proceed in parallel.
type Service struct {
	store    Store
	board    *market.Board
	locks    *accountLocks
	lockWait time.Duration
	log      zerolog.Logger
}

func NewService(store Store, board *market.Board, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		board:    board,
		locks:    newAccountLocks(),
		lockWait: defaultLockWait,
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

func (s *Service) RegisterAccount(ctx context.Context, name, email, phone string, initialBalance decimal.Decimal, isAdmin bool) (model.Account, error) {
	if initialBalance.IsNegative() {
		return model.Account{}, ErrInvalidAmount
	}
	acc := model.Account{
		Name:     name,
		Email:    email,
		Phone:    phone,
		IsAdmin:  isAdmin,
		Balance:  initialBalance,
		Holdings: make(map[string]model.Holding),
	}
	return s.store.CreateAccount(ctx, acc)
}

// RemoveAccount backs out a registration that could not complete.
func (s *Service) RemoveAccount(ctx context.Context, accountID string) error {
	return s.store.DeleteAccount(ctx, accountID)
}

type TradeRequest struct {
	AccountID string
	Side      types.Side
	Symbol    string
	Quantity  int64
	Price     decimal.Decimal
	Risk      types.RiskLevel
}

// ExecuteTrade applies one BUY or SELL atomically: balance and holding
// mutation plus the transaction log append commit as one unit, or not
// at all. Rejections leave the account untouched.
func (s *Service) ExecuteTrade(ctx context.Context, req TradeRequest) (model.Account, error) {
	if !req.Side.Valid() {
		return model.Account{}, ErrInvalidSide
	}
	if req.Quantity <= 0 || req.Price.LessThanOrEqual(decimal.Zero) {
		return model.Account{}, ErrInvalidAmount
	}
	if _, ok := s.board.Get(req.Symbol); !ok {
		return model.Account{}, ErrUnknownInstrument
	}

	release, err := s.locks.acquire(ctx, req.AccountID, s.lockWait)
	if err != nil {
		return model.Account{}, err
	}
	defer release()

	acc, err := s.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return model.Account{}, err
	}

	cost := req.Price.Mul(decimal.NewFromInt(req.Quantity))
	switch req.Side {
	case types.SideBuy:
		if cost.GreaterThan(acc.Balance) {
			return model.Account{}, ErrInsufficientFunds
		}
		acc.Balance = acc.Balance.Sub(cost)
		if h, ok := acc.Holdings[req.Symbol]; ok {
			totalQty := h.Quantity + req.Quantity
			totalCost := h.AvgPrice.Mul(decimal.NewFromInt(h.Quantity)).Add(cost)
			h.AvgPrice = totalCost.Div(decimal.NewFromInt(totalQty))
			h.Quantity = totalQty
			acc.Holdings[req.Symbol] = h
		} else {
			acc.Holdings[req.Symbol] = model.Holding{Symbol: req.Symbol, Quantity: req.Quantity, AvgPrice: req.Price}
		}
	case types.SideSell:
		h, ok := acc.Holdings[req.Symbol]
		if !ok || h.Quantity < req.Quantity {
			return model.Account{}, ErrInsufficientShares
		}
		acc.Balance = acc.Balance.Add(cost)
		h.Quantity -= req.Quantity
		if h.Quantity == 0 {
			delete(acc.Holdings, req.Symbol)
		} else {
			acc.Holdings[req.Symbol] = h
		}
	}

	// A request cancelled before the commit must have no effect.
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	txn := model.Transaction{
		AccountID: req.AccountID,
		Side:      req.Side,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Risk:      req.Risk,
	}
	if _, err := s.store.ApplyTrade(ctx, acc, txn); err != nil {
		return model.Account{}, err
	}

	s.log.Debug().
		Str("account", req.AccountID).
		Str("side", string(req.Side)).
		Str("symbol", req.Symbol).
		Int64("qty", req.Quantity).
		Str("price", req.Price.String()).
		Str("risk", string(req.Risk)).
		Msg("trade executed")
	return acc, nil
}

func (s *Service) AddFunds(ctx context.Context, accountID string, amount decimal.Decimal) (model.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return model.Account{}, ErrInvalidAmount
	}
	release, err := s.locks.acquire(ctx, accountID, s.lockWait)
	if err != nil {
		return model.Account{}, err
	}
	defer release()

	acc, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return model.Account{}, err
	}
	acc.Balance = acc.Balance.Add(amount)
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	if err := s.store.SaveBalance(ctx, accountID, acc.Balance); err != nil {
		return model.Account{}, err
	}
	return acc, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

// Valuation prices the portfolio against the current snapshot and
// enriches rows with instrument display names.
func (s *Service) Valuation(ctx context.Context, accountID string) (model.PortfolioValuation, error) {
	acc, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return model.PortfolioValuation{}, err
	}
	out := valuation.ValuePortfolio(acc, s.board.Prices())
	names := make(map[string]string)
	for _, inst := range s.board.Instruments() {
		names[inst.Symbol] = inst.Name
	}
	for i := range out.Holdings {
		if name, ok := names[out.Holdings[i].Symbol]; ok {
			out.Holdings[i].Name = name
		} else {
			out.Holdings[i].Name = out.Holdings[i].Symbol
		}
	}
	return out, nil
}

func (s *Service) Transactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, accountID)
}
