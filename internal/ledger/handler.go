package ledger

import (
	"errors"
	"net/http"
	"strings"

	"vtrader/internal/httputil"
	"vtrader/internal/market"
	"vtrader/internal/types"

	"github.com/shopspring/decimal"
)

type Handler struct {
	svc   *Service
	board *market.Board
}

func NewHandler(svc *Service, board *market.Board) *Handler {
	return &Handler{svc: svc, board: board}
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInsufficientShares),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownInstrument), errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, ErrStorageFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type tradeRequest struct {
	Side     string `json:"side"`
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// Trade executes at the server-side quote: the price and risk label are
// read from the board here, not trusted from the client.
func (h *Handler) Trade(w http.ResponseWriter, r *http.Request, accountID string) {
	var req tradeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	price, ok := h.board.Get(symbol)
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: ErrUnknownInstrument.Error()})
		return
	}
	acc, err := h.svc.ExecuteTrade(r.Context(), TradeRequest{
		AccountID: accountID,
		Side:      types.Side(strings.ToUpper(strings.TrimSpace(req.Side))),
		Symbol:    symbol,
		Quantity:  req.Quantity,
		Price:     price,
		Risk:      h.board.ClassifySymbol(symbol, price),
	})
	if err != nil {
		httputil.WriteJSON(w, httpStatus(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc)
}

type addFundsRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request, accountID string) {
	var req addFundsRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: ErrInvalidAmount.Error()})
		return
	}
	acc, err := h.svc.AddFunds(r.Context(), accountID, amount)
	if err != nil {
		httputil.WriteJSON(w, httpStatus(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc)
}

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request, accountID string) {
	val, err := h.svc.Valuation(r.Context(), accountID)
	if err != nil {
		httputil.WriteJSON(w, httpStatus(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, val)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request, accountID string) {
	txs, err := h.svc.Transactions(r.Context(), accountID)
	if err != nil {
		httputil.WriteJSON(w, httpStatus(err), httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txs)
}
