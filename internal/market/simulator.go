package market

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// priceFloor keeps a simulated price from collapsing to zero. The tick
// delta is bounded, so the floor only matters for pathological seeds.
var priceFloor = decimal.NewFromFloat(0.01)

// Persister saves ticked prices. Failures are logged and the tick is
// skipped; the next tick proceeds independently.
type Persister interface {
	SavePrices(ctx context.Context, prices map[string]decimal.Decimal) error
}

// Simulator mutates every instrument price on a fixed cadence using a
// biased random walk: delta = (r - 0.48) * 0.05. The 0.48 bias matches
// the original simulation and is kept for behavioral parity.
type Simulator struct {
	board     *Board
	persister Persister
	bus       *Bus
	interval  time.Duration
	log       zerolog.Logger

	mu   sync.Mutex
	draw func() float64
}

func NewSimulator(board *Board, persister Persister, bus *Bus, interval time.Duration, log zerolog.Logger) *Simulator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Simulator{
		board:     board,
		persister: persister,
		bus:       bus,
		interval:  interval,
		log:       log.With().Str("component", "simulator").Logger(),
		draw:      rng.Float64,
	}
}

// Run ticks on the configured interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", s.interval).Int("instruments", s.board.Size()).Msg("price simulator started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("price simulator stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick publishes a new price snapshot for every instrument.
func (s *Simulator) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.board.Prices()
	next := make(map[string]decimal.Decimal, len(current))
	for symbol, price := range current {
		r := s.draw()
		delta := (r - 0.48) * 0.05
		p := price.Mul(decimal.NewFromFloat(1 + delta)).Round(2)
		if p.LessThan(priceFloor) {
			p = priceFloor
		}
		next[symbol] = p
	}
	s.board.Publish(next)

	if s.bus != nil {
		s.bus.Publish(QuoteEvent{Type: "prices", Quotes: s.quotes(next)})
	}
	if s.persister != nil {
		if err := s.persister.SavePrices(ctx, next); err != nil {
			s.log.Error().Err(err).Msg("price persistence failed, skipping for this tick")
		}
	}
}

func (s *Simulator) quotes(prices map[string]decimal.Decimal) []Quote {
	now := time.Now().UTC().UnixMilli()
	out := make([]Quote, 0, len(prices))
	for _, inst := range s.board.Instruments() {
		price, ok := prices[inst.Symbol]
		if !ok {
			continue
		}
		out = append(out, Quote{
			Symbol:    inst.Symbol,
			Price:     price.StringFixed(2),
			Risk:      s.board.ClassifySymbol(inst.Symbol, price),
			Timestamp: now,
		})
	}
	return out
}
