package market

import (
	"sync"

	"vtrader/internal/types"
)

// Quote is one instrument's live price with its risk label.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     string          `json:"price"`
	Risk      types.RiskLevel `json:"risk"`
	Timestamp int64           `json:"ts"`
}

// QuoteEvent is the wire frame streamed to subscribers: a full quote
// set, tagged "snapshot" on connect and "prices" per tick.
type QuoteEvent struct {
	Type   string  `json:"type"`
	Quotes []Quote `json:"data"`
}

// Bus fans tick events out to WebSocket subscribers. Slow subscribers
// drop events rather than blocking the simulator.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan QuoteEvent]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan QuoteEvent]struct{})}
}

func (b *Bus) Subscribe() chan QuoteEvent {
	ch := make(chan QuoteEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan QuoteEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(evt QuoteEvent) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.RUnlock()
}
