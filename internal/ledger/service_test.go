package ledger

import (
	"context"
	"testing"
	"time"

	"vtrader/internal/market"
	"vtrader/internal/model"
	"vtrader/internal/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testBoard() *market.Board {
	return market.NewBoard([]model.Instrument{
		{Symbol: "TCS", Name: "Tata Consultancy Services", Sector: "IT", Price: decimal.NewFromInt(100), BasePrice: decimal.NewFromInt(100)},
		{Symbol: "INFY", Name: "Infosys", Sector: "IT", Price: decimal.NewFromInt(200), BasePrice: decimal.NewFromInt(200)},
	})
}

func newTestService(t *testing.T) (*Service, *market.Board, model.Account) {
	t.Helper()
	board := testBoard()
	svc := NewService(NewMemStore(), board, zerolog.Nop())
	acc, err := svc.RegisterAccount(context.Background(), "Rahul", "rahul@example.com", "", decimal.NewFromInt(100000), false)
	require.NoError(t, err)
	return svc, board, acc
}

func buy(t *testing.T, svc *Service, accountID, symbol string, qty int64, price decimal.Decimal) model.Account {
	t.Helper()
	acc, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: accountID,
		Side:      types.SideBuy,
		Symbol:    symbol,
		Quantity:  qty,
		Price:     price,
		Risk:      types.RiskLow,
	})
	require.NoError(t, err)
	return acc
}

func TestExecuteTradeBuy(t *testing.T) {
	svc, _, acc := newTestService(t)

	got := buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(100))

	require.True(t, got.Balance.Equal(decimal.NewFromInt(99000)), "balance: %s", got.Balance)
	h, ok := got.Holdings["TCS"]
	require.True(t, ok)
	require.EqualValues(t, 10, h.Quantity)
	require.True(t, h.AvgPrice.Equal(decimal.NewFromInt(100)))
}

func TestExecuteTradeBuyAveragesCost(t *testing.T) {
	svc, _, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(100))
	got := buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(200))

	require.True(t, got.Balance.Equal(decimal.NewFromInt(97000)), "balance: %s", got.Balance)
	h := got.Holdings["TCS"]
	require.EqualValues(t, 20, h.Quantity)
	require.True(t, h.AvgPrice.Equal(decimal.NewFromInt(150)), "avg price: %s", h.AvgPrice)
}

func TestExecuteTradeSellAllRemovesHolding(t *testing.T) {
	svc, _, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 20, decimal.NewFromInt(100))
	got, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideSell,
		Symbol:    "TCS",
		Quantity:  20,
		Price:     decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	require.True(t, got.Balance.Equal(decimal.NewFromInt(102000)), "balance: %s", got.Balance)
	_, ok := got.Holdings["TCS"]
	require.False(t, ok, "holding must be removed at zero quantity")
}

func TestExecuteTradePartialSellKeepsAvgPrice(t *testing.T) {
	svc, _, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(100))
	got, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideSell,
		Symbol:    "TCS",
		Quantity:  4,
		Price:     decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	h := got.Holdings["TCS"]
	require.EqualValues(t, 6, h.Quantity)
	require.True(t, h.AvgPrice.Equal(decimal.NewFromInt(100)), "selling must not change the average price")
}

func TestExecuteTradeSellInsufficientShares(t *testing.T) {
	svc, _, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(100))
	_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideSell,
		Symbol:    "TCS",
		Quantity:  25,
		Price:     decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, ErrInsufficientShares)

	// A rejected trade leaves the account exactly as it was.
	got, err := svc.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(99000)))
	require.EqualValues(t, 10, got.Holdings["TCS"].Quantity)

	txs, err := svc.Transactions(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1, "rejected trade must not be recorded")
}

func TestExecuteTradeSellUnheldSymbol(t *testing.T) {
	svc, _, acc := newTestService(t)

	_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideSell,
		Symbol:    "INFY",
		Quantity:  1,
		Price:     decimal.NewFromInt(200),
	})
	require.ErrorIs(t, err, ErrInsufficientShares)
}

func TestExecuteTradeInsufficientFunds(t *testing.T) {
	svc, _, acc := newTestService(t)

	_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideBuy,
		Symbol:    "TCS",
		Quantity:  1001,
		Price:     decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := svc.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(100000)))
	require.Empty(t, got.Holdings)
}

func TestExecuteTradeExactBalanceSpendsToZero(t *testing.T) {
	svc, _, acc := newTestService(t)

	got := buy(t, svc, acc.ID, "TCS", 1000, decimal.NewFromInt(100))
	require.True(t, got.Balance.IsZero(), "balance: %s", got.Balance)
}

func TestExecuteTradeUnknownInstrument(t *testing.T) {
	svc, _, acc := newTestService(t)

	_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideBuy,
		Symbol:    "WIPRO",
		Quantity:  1,
		Price:     decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestExecuteTradeInvalidAmounts(t *testing.T) {
	svc, _, acc := newTestService(t)

	cases := []struct {
		name string
		qty  int64
		px   decimal.Decimal
	}{
		{"zero quantity", 0, decimal.NewFromInt(100)},
		{"negative quantity", -5, decimal.NewFromInt(100)},
		{"zero price", 1, decimal.Zero},
		{"negative price", 1, decimal.NewFromInt(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
				AccountID: acc.ID,
				Side:      types.SideBuy,
				Symbol:    "TCS",
				Quantity:  tc.qty,
				Price:     tc.px,
			})
			require.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestExecuteTradeInvalidSide(t *testing.T) {
	svc, _, acc := newTestService(t)

	for _, side := range []types.Side{"", "HOLD", "buy"} {
		_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
			AccountID: acc.ID,
			Side:      side,
			Symbol:    "TCS",
			Quantity:  1,
			Price:     decimal.NewFromInt(100),
		})
		require.ErrorIs(t, err, ErrInvalidSide, "side %q", side)
	}
}

func TestExecuteTradeCancelledContext(t *testing.T) {
	svc, _, acc := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.ExecuteTrade(ctx, TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideBuy,
		Symbol:    "TCS",
		Quantity:  1,
		Price:     decimal.NewFromInt(100),
	})
	require.Error(t, err)

	got, err := svc.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(100000)), "cancelled request must have no effect")
	require.Empty(t, got.Holdings)
}

func TestExecuteTradeLockTimeout(t *testing.T) {
	svc, _, acc := newTestService(t)
	svc.lockWait = 20 * time.Millisecond

	release, err := svc.locks.acquire(context.Background(), acc.ID, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = svc.ExecuteTrade(context.Background(), TradeRequest{
		AccountID: acc.ID,
		Side:      types.SideBuy,
		Symbol:    "TCS",
		Quantity:  1,
		Price:     decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, ErrConcurrentModification)
}

func TestExecuteTradeSerializesPerAccount(t *testing.T) {
	svc, _, acc := newTestService(t)

	const workers = 8
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := svc.ExecuteTrade(context.Background(), TradeRequest{
				AccountID: acc.ID,
				Side:      types.SideBuy,
				Symbol:    "TCS",
				Quantity:  1,
				Price:     decimal.NewFromInt(100),
			})
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}

	got, err := svc.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(100000-workers*100)), "balance: %s", got.Balance)
	require.EqualValues(t, workers, got.Holdings["TCS"].Quantity)

	txs, err := svc.Transactions(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Len(t, txs, workers)
}

func TestAddFunds(t *testing.T) {
	svc, _, acc := newTestService(t)

	got, err := svc.AddFunds(context.Background(), acc.ID, decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(105000)))

	_, err = svc.AddFunds(context.Background(), acc.ID, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.AddFunds(context.Background(), acc.ID, decimal.NewFromInt(-10))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRegisterAccountNegativeBalance(t *testing.T) {
	svc := NewService(NewMemStore(), testBoard(), zerolog.Nop())
	_, err := svc.RegisterAccount(context.Background(), "x", "x@example.com", "", decimal.NewFromInt(-1), false)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGetAccountNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetAccount(context.Background(), "nope")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTransactionsNewestFirst(t *testing.T) {
	svc, _, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 1, decimal.NewFromInt(100))
	buy(t, svc, acc.ID, "INFY", 2, decimal.NewFromInt(200))

	txs, err := svc.Transactions(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "INFY", txs[0].Symbol)
	require.Equal(t, "TCS", txs[1].Symbol)
	for _, tx := range txs {
		require.NotEmpty(t, tx.ID)
		require.Equal(t, acc.ID, tx.AccountID)
	}
}

func TestValuationUsesBoardPrices(t *testing.T) {
	svc, board, acc := newTestService(t)

	buy(t, svc, acc.ID, "TCS", 10, decimal.NewFromInt(100))
	board.Publish(map[string]decimal.Decimal{
		"TCS":  decimal.NewFromInt(120),
		"INFY": decimal.NewFromInt(200),
	})

	v, err := svc.Valuation(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Len(t, v.Holdings, 1)
	require.Equal(t, "Tata Consultancy Services", v.Holdings[0].Name)
	require.True(t, v.MarketValue.Equal(decimal.NewFromInt(1200)), "market value: %s", v.MarketValue)
	require.True(t, v.PL.Equal(decimal.NewFromInt(200)), "pl: %s", v.PL)
}
