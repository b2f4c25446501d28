package market

import (
	"sort"
	"sync"

	"vtrader/internal/model"

	"github.com/shopspring/decimal"
)

// Board owns the shared instrument price table. Writers publish a whole
// new price map per tick; readers hold the map they got and never see a
// partial update. The baseline map is the bootstrap snapshot used as the
// risk reference and is immutable after construction.
type Board struct {
	mu       sync.RWMutex
	meta     []model.Instrument
	baseline map[string]decimal.Decimal
	prices   map[string]decimal.Decimal
}

func NewBoard(instruments []model.Instrument) *Board {
	meta := make([]model.Instrument, len(instruments))
	copy(meta, instruments)
	sort.Slice(meta, func(i, j int) bool { return meta[i].Symbol < meta[j].Symbol })

	baseline := make(map[string]decimal.Decimal, len(meta))
	prices := make(map[string]decimal.Decimal, len(meta))
	for i := range meta {
		if meta[i].BasePrice.LessThanOrEqual(decimal.Zero) {
			meta[i].BasePrice = meta[i].Price
		}
		baseline[meta[i].Symbol] = meta[i].BasePrice
		prices[meta[i].Symbol] = meta[i].Price
	}
	return &Board{meta: meta, baseline: baseline, prices: prices}
}

// Prices returns the currently published snapshot. The returned map is
// shared and must be treated as read-only.
func (b *Board) Prices() map[string]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prices
}

func (b *Board) Get(symbol string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[symbol]
	return p, ok
}

func (b *Board) Baseline(symbol string) (decimal.Decimal, bool) {
	p, ok := b.baseline[symbol]
	return p, ok
}

func (b *Board) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.prices)
}

// Instruments returns the seeded metadata with current prices applied,
// sorted by symbol.
func (b *Board) Instruments() []model.Instrument {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Instrument, len(b.meta))
	copy(out, b.meta)
	for i := range out {
		if p, ok := b.prices[out[i].Symbol]; ok {
			out[i].Price = p
		}
	}
	return out
}

// Publish swaps in the next snapshot. The map must not be mutated by the
// caller afterwards.
func (b *Board) Publish(next map[string]decimal.Decimal) {
	b.mu.Lock()
	b.prices = next
	b.mu.Unlock()
}
