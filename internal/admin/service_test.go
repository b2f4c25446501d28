package admin

import (
	"context"
	"testing"

	"vtrader/internal/ledger"
	"vtrader/internal/market"
	"vtrader/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (ledger.Store, *market.Board) {
	t.Helper()
	store := ledger.NewMemStore()
	board := market.NewBoard([]model.Instrument{
		{Symbol: "TCS", Price: decimal.NewFromInt(100)},
		{Symbol: "INFY", Price: decimal.NewFromInt(200)},
	})

	ctx := context.Background()
	_, err := store.CreateAccount(ctx, model.Account{
		Name:    "user with holdings",
		Balance: decimal.NewFromInt(1000),
		Holdings: map[string]model.Holding{
			"TCS": {Symbol: "TCS", Quantity: 10, AvgPrice: decimal.NewFromInt(90)},
		},
	})
	require.NoError(t, err)
	_, err = store.CreateAccount(ctx, model.Account{
		Name:    "user without holdings",
		Balance: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	_, err = store.CreateAccount(ctx, model.Account{
		Name:    "admin",
		IsAdmin: true,
		Holdings: map[string]model.Holding{
			"INFY": {Symbol: "INFY", Quantity: 100, AvgPrice: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	return store, board
}

func TestStatsExcludesAdmins(t *testing.T) {
	store, board := seedStore(t)
	svc := NewService(store, board)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.UserCount)
	require.Equal(t, 2, stats.InstrumentCount)
	// 10 TCS at the current price of 100; the admin's holdings do not
	// count and cash balances are not invested capital.
	require.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(1000)), "total invested: %s", stats.TotalInvested)
}

func TestStatsTracksCurrentPrices(t *testing.T) {
	store, board := seedStore(t)
	svc := NewService(store, board)

	board.Publish(map[string]decimal.Decimal{
		"TCS":  decimal.NewFromInt(150),
		"INFY": decimal.NewFromInt(200),
	})
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(1500)), "total invested: %s", stats.TotalInvested)
}

func TestListUsersExcludesAdmins(t *testing.T) {
	store, board := seedStore(t)
	svc := NewService(store, board)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.False(t, u.IsAdmin)
	}
}
