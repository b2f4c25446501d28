package ledger

import (
	"context"
	"errors"
	"fmt"

	"vtrader/internal/model"
	"vtrader/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

func (s *PGStore) CreateAccount(ctx context.Context, acc model.Account) (model.Account, error) {
	err := s.pool.QueryRow(ctx,
		"insert into users (name, email, phone, is_admin, balance) values ($1, $2, $3, $4, $5) returning id, created_at",
		acc.Name, acc.Email, acc.Phone, acc.IsAdmin, acc.Balance).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		return model.Account{}, storageErr(err)
	}
	if acc.Holdings == nil {
		acc.Holdings = make(map[string]model.Holding)
	}
	return acc, nil
}

// DeleteAccount removes the user row; credentials, holdings and
// transactions follow via cascade.
func (s *PGStore) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "delete from users where id = $1", id)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PGStore) GetAccount(ctx context.Context, id string) (model.Account, error) {
	var acc model.Account
	err := s.pool.QueryRow(ctx,
		"select id, name, email, phone, is_admin, balance, created_at from users where id = $1",
		id).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.Phone, &acc.IsAdmin, &acc.Balance, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, storageErr(err)
	}
	acc.Holdings = make(map[string]model.Holding)
	rows, err := s.pool.Query(ctx,
		"select symbol, quantity, avg_price from holdings where user_id = $1", id)
	if err != nil {
		return model.Account{}, storageErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.Symbol, &h.Quantity, &h.AvgPrice); err != nil {
			return model.Account{}, storageErr(err)
		}
		acc.Holdings[h.Symbol] = h
	}
	if err := rows.Err(); err != nil {
		return model.Account{}, storageErr(err)
	}
	return acc, nil
}

func (s *PGStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx,
		"select id, name, email, phone, is_admin, balance, created_at from users order by created_at")
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	byID := make(map[string]int)
	var out []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.Email, &acc.Phone, &acc.IsAdmin, &acc.Balance, &acc.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		acc.Holdings = make(map[string]model.Holding)
		byID[acc.ID] = len(out)
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	hrows, err := s.pool.Query(ctx, "select user_id, symbol, quantity, avg_price from holdings")
	if err != nil {
		return nil, storageErr(err)
	}
	defer hrows.Close()
	for hrows.Next() {
		var userID string
		var h model.Holding
		if err := hrows.Scan(&userID, &h.Symbol, &h.Quantity, &h.AvgPrice); err != nil {
			return nil, storageErr(err)
		}
		if i, ok := byID[userID]; ok {
			out[i].Holdings[h.Symbol] = h
		}
	}
	if err := hrows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// ApplyTrade persists the post-trade account state and the transaction
// record in one database transaction. The user row is locked for the
// duration so a retried request cannot interleave with a stale read.
func (s *PGStore) ApplyTrade(ctx context.Context, acc model.Account, txn model.Transaction) (model.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Transaction{}, storageErr(err)
	}
	defer tx.Rollback(ctx)

	var locked string
	if err := tx.QueryRow(ctx, "select id from users where id = $1 for update", acc.ID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transaction{}, ErrAccountNotFound
		}
		return model.Transaction{}, storageErr(err)
	}
	if _, err := tx.Exec(ctx, "update users set balance = $1 where id = $2", acc.Balance, acc.ID); err != nil {
		return model.Transaction{}, storageErr(err)
	}
	if h, ok := acc.Holdings[txn.Symbol]; ok {
		_, err = tx.Exec(ctx, `
			insert into holdings (user_id, symbol, quantity, avg_price)
			values ($1, $2, $3, $4)
			on conflict (user_id, symbol)
			do update set quantity = excluded.quantity, avg_price = excluded.avg_price
		`, acc.ID, h.Symbol, h.Quantity, h.AvgPrice)
	} else {
		_, err = tx.Exec(ctx, "delete from holdings where user_id = $1 and symbol = $2", acc.ID, txn.Symbol)
	}
	if err != nil {
		return model.Transaction{}, storageErr(err)
	}
	err = tx.QueryRow(ctx,
		"insert into transactions (user_id, side, symbol, quantity, price, risk) values ($1, $2, $3, $4, $5, $6) returning id, created_at",
		acc.ID, string(txn.Side), txn.Symbol, txn.Quantity, txn.Price, string(txn.Risk)).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return model.Transaction{}, storageErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Transaction{}, storageErr(err)
	}
	txn.AccountID = acc.ID
	return txn, nil
}

func (s *PGStore) SaveBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx, "update users set balance = $1 where id = $2", balance, accountID)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PGStore) ListTransactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		"select id, user_id, side, symbol, quantity, price, risk, created_at from transactions where user_id = $1 order by created_at desc, id desc",
		accountID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	var out []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var side, risk string
		if err := rows.Scan(&txn.ID, &txn.AccountID, &side, &txn.Symbol, &txn.Quantity, &txn.Price, &risk, &txn.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		txn.Side = types.Side(side)
		txn.Risk = types.RiskLevel(risk)
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}
