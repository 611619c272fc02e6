// Package ledgerdelivery manages delivery layer of the ledger.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, accountID int64, amount string) (domain.BalanceResult, error)
	Withdraw(ctx context.Context, accountID int64, amount, pin string) (domain.BalanceResult, error)
	Transfer(ctx context.Context, senderID int64, targetCard, amount, pin string) (domain.TransferResult, error)
	CheckBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	History(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(ls Service) *Handler {
	return &Handler{
		service: ls,
	}
}

// Transaction is the JSON representation of a transaction log entry.
type Transaction struct {
	ID               int64     `json:"id"`
	Kind             string    `json:"kind"`
	Amount           string    `json:"amount"`
	TargetCardNumber string    `json:"target_card_number,omitempty"`
	TransferID       string    `json:"transfer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func newTransaction(t domain.Transaction) Transaction {
	res := Transaction{
		ID:               t.ID,
		Kind:             string(t.Kind),
		Amount:           moneypkg.Format(t.Amount),
		TargetCardNumber: t.TargetCardNumber,
		CreatedAt:        t.CreatedAt,
	}

	if t.TransferID != uuid.Nil {
		res.TransferID = t.TransferID.String()
	}

	return res
}

type balanceData struct {
	Balance     string       `json:"balance"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

type historyData struct {
	Transactions []Transaction `json:"transactions"`
}

// respondError writes the status matching err.
func respondError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPinFormat),
		errors.Is(err, domain.ErrSelfTransfer):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrInvalidPin):
		gctx.JSON(http.StatusUnauthorized, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTargetNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBalanceLimit):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	case errors.Is(err, errorspkg.ErrStorageUnavailable):
		gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func bindJSON(gctx *gin.Context, req any) bool {
	err := gctx.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return false
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))

	return false
}

func balanceResponse(r domain.BalanceResult) web.Response {
	entry := newTransaction(r.Entry)

	return web.Response{
		Data: balanceData{
			Balance:     moneypkg.Format(r.Balance),
			Transaction: &entry,
		},
	}
}

type depositRequest struct {
	Amount string `json:"amount" binding:"required,money"`
}

// Deposit handles http request to add money to the authenticated account.
func (h *Handler) Deposit(gctx *gin.Context) {
	var req depositRequest
	if !bindJSON(gctx, &req) {
		return
	}

	payload := middleware.GetPayload(gctx)

	result, err := h.service.Deposit(gctx.Request.Context(), payload.AccountID, req.Amount)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, balanceResponse(result))
}

type withdrawRequest struct {
	Amount string `json:"amount" binding:"required,money"`
	Pin    string `json:"pin" binding:"required,pin"`
}

// Withdraw handles http request to take money from the authenticated account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	var req withdrawRequest
	if !bindJSON(gctx, &req) {
		return
	}

	payload := middleware.GetPayload(gctx)

	result, err := h.service.Withdraw(gctx.Request.Context(), payload.AccountID, req.Amount, req.Pin)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, balanceResponse(result))
}

type transferRequest struct {
	TargetCardNumber string `json:"target_card_number" binding:"required,cardnumber"`
	Amount           string `json:"amount" binding:"required,money"`
	Pin              string `json:"pin" binding:"required,pin"`
}

// Transfer handles http request to move money to the account holding the target card.
func (h *Handler) Transfer(gctx *gin.Context) {
	var req transferRequest
	if !bindJSON(gctx, &req) {
		return
	}

	payload := middleware.GetPayload(gctx)

	result, err := h.service.Transfer(gctx.Request.Context(), payload.AccountID, req.TargetCardNumber, req.Amount, req.Pin)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, balanceResponse(domain.BalanceResult{
		Balance: result.FromBalance,
		Entry:   result.FromEntry,
	}))
}

// Balance handles http request to read the authenticated account balance.
func (h *Handler) Balance(gctx *gin.Context) {
	payload := middleware.GetPayload(gctx)

	balance, err := h.service.CheckBalance(gctx.Request.Context(), payload.AccountID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{Balance: moneypkg.Format(balance)}})
}

// History handles http request to list the authenticated account transactions, newest first.
func (h *Handler) History(gctx *gin.Context) {
	payload := middleware.GetPayload(gctx)

	entries, err := h.service.History(gctx.Request.Context(), payload.AccountID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	res := historyData{Transactions: make([]Transaction, 0, len(entries))}
	for _, e := range entries {
		res.Transactions = append(res.Transactions, newTransaction(e))
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}
