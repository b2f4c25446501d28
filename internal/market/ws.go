package market

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// QuoteWS streams the live price table: an initial snapshot on connect,
// then one event per simulator tick.
type QuoteWS struct {
	board    *Board
	bus      *Bus
	origin   string
	upgrader websocket.Upgrader
}

func NewQuoteWS(board *Board, bus *Bus, origin string) *QuoteWS {
	return &QuoteWS{
		board:  board,
		bus:    bus,
		origin: origin,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
	}
}

func (h *QuoteWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	snapshot := make([]Quote, 0, h.board.Size())
	now := time.Now().UTC().UnixMilli()
	for _, inst := range h.board.Instruments() {
		snapshot = append(snapshot, Quote{
			Symbol:    inst.Symbol,
			Price:     inst.Price.StringFixed(2),
			Risk:      h.board.ClassifySymbol(inst.Symbol, inst.Price),
			Timestamp: now,
		})
	}
	if err := conn.WriteJSON(QuoteEvent{Type: "snapshot", Quotes: snapshot}); err != nil {
		return
	}

	events := h.bus.Subscribe()
	defer h.bus.Unsubscribe(events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	return strings.EqualFold(r.Header.Get("Origin"), origin)
}
