package ledger

import (
	"context"

	"vtrader/internal/model"

	"github.com/shopspring/decimal"
)

// Store is the persistence collaborator for accounts and the
// transaction log. Implementations must provide read-your-writes
// consistency per account, and ApplyTrade must persist the account
// state and the transaction record as a single atomic unit.
type Store interface {
	CreateAccount(ctx context.Context, acc model.Account) (model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	GetAccount(ctx context.Context, id string) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ApplyTrade(ctx context.Context, acc model.Account, txn model.Transaction) (model.Transaction, error)
	SaveBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	ListTransactions(ctx context.Context, accountID string) ([]model.Transaction, error)
}
