package market

import (
	"net/http"

	"vtrader/internal/httputil"
)

type Handler struct {
	board *Board
	WS    *QuoteWS
}

func NewHandler(board *Board, ws *QuoteWS) *Handler {
	return &Handler{board: board, WS: ws}
}

func (h *Handler) Instruments(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.board.Instruments())
}
