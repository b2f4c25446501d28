package market

import (
	"context"

	"vtrader/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Bootstrap loads the instrument table, seeding it first when empty.
// Instruments are created once and never deleted, so the load result is
// the full universe.
func (s *Store) Bootstrap(ctx context.Context, seed []model.Instrument) ([]model.Instrument, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "select count(*) from instruments").Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)
		for _, inst := range seed {
			_, err = tx.Exec(ctx,
				"insert into instruments (symbol, name, sector, price, base_price) values ($1, $2, $3, $4, $5)",
				inst.Symbol, inst.Name, inst.Sector, inst.Price, inst.BasePrice)
			if err != nil {
				return nil, err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return s.LoadInstruments(ctx)
}

func (s *Store) LoadInstruments(ctx context.Context) ([]model.Instrument, error) {
	rows, err := s.pool.Query(ctx, "select symbol, name, sector, price, base_price from instruments order by symbol")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Instrument
	for rows.Next() {
		var inst model.Instrument
		if err := rows.Scan(&inst.Symbol, &inst.Name, &inst.Sector, &inst.Price, &inst.BasePrice); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *Store) SavePrices(ctx context.Context, prices map[string]decimal.Decimal) error {
	batch := &pgx.Batch{}
	for symbol, price := range prices {
		batch.Queue("update instruments set price = $1 where symbol = $2", price, symbol)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}
