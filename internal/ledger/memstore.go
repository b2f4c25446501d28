package ledger

import (
	"context"
	"sync"
	"time"

	"vtrader/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemStore keeps accounts and transactions in process memory. It backs
// tests and single-node development runs; the Postgres store is the
// production collaborator.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	txs      map[string][]model.Transaction
}

func NewMemStore() *MemStore {
	return &MemStore{
		accounts: make(map[string]model.Account),
		txs:      make(map[string][]model.Transaction),
	}
}

func (s *MemStore) CreateAccount(ctx context.Context, acc model.Account) (model.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	if acc.Holdings == nil {
		acc.Holdings = make(map[string]model.Holding)
	}
	s.mu.Lock()
	s.accounts[acc.ID] = acc.Clone()
	s.mu.Unlock()
	return acc, nil
}

func (s *MemStore) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, id)
	delete(s.txs, id)
	return nil
}

func (s *MemStore) GetAccount(ctx context.Context, id string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return model.Account{}, ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *MemStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.Clone())
	}
	return out, nil
}

func (s *MemStore) ApplyTrade(ctx context.Context, acc model.Account, txn model.Transaction) (model.Transaction, error) {
	txn.ID = uuid.NewString()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.ID]; !ok {
		return model.Transaction{}, ErrAccountNotFound
	}
	s.accounts[acc.ID] = acc.Clone()
	s.txs[acc.ID] = append(s.txs[acc.ID], txn)
	return txn, nil
}

func (s *MemStore) SaveBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	acc.Balance = balance
	s.accounts[accountID] = acc
	return nil
}

// ListTransactions returns a snapshot copy in reverse append order,
// which is descending execution time.
func (s *MemStore) ListTransactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.txs[accountID]
	out := make([]model.Transaction, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}
