// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Register(ctx context.Context, name, email, password, pin string) (domain.AccountPublic, error)
	Login(ctx context.Context, email, password string) (domain.AccountPublic, error)
	Get(ctx context.Context, id int64) (domain.AccountPublic, error)
	List(ctx context.Context) ([]domain.AccountPublic, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns account handler.
func NewHandler(as Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      as,
		sessionMaker: sm,
	}
}

// Account is the JSON representation of an account.
type Account struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CardNumber string    `json:"card_number"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAccount(a domain.AccountPublic) Account {
	return Account{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		CardNumber: a.CardNumber,
		Balance:    moneypkg.Format(a.Balance),
		CreatedAt:  a.CreatedAt,
	}
}

type accountData struct {
	Account Account `json:"account"`
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

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Pin      string `json:"pin" binding:"required,pin"`
}

// Register handles http request to open an account and starts a session for it.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req registerRequest
	if !bindJSON(gctx, &req) {
		return
	}

	acc, err := h.service.Register(ctx, req.Name, req.Email, req.Password, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPinFormat):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrDuplicateEmail):
			gctx.JSON(http.StatusConflict, web.Error(err))
		case errors.Is(err, errorspkg.ErrStorageUnavailable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	resp, err := h.startSession(gctx, acc)
	if err != nil {
		// The account is already stored; the client logs in to get tokens.
		gctx.JSON(http.StatusCreated, web.Response{Data: accountData{Account: newAccount(acc)}})
		return
	}

	gctx.JSON(http.StatusCreated, resp)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles http login request and returns account and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if !bindJSON(gctx, &req) {
		return
	}

	acc, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
		case errors.Is(err, errorspkg.ErrStorageUnavailable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	resp, err := h.startSession(gctx, acc)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, resp)
}

// startSession issues tokens for acc and builds the response carrying them.
func (h *Handler) startSession(gctx *gin.Context, acc domain.AccountPublic) (web.Response, error) {
	ctx := gctx.Request.Context()

	arg := domain.CreateSessionParams{
		AccountID: acc.ID,
		Email:     acc.Email,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", acc.ID).Msg("cannot create session")
		return web.Response{}, err
	}

	return web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt.Format(time.RFC3339),
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		Data:                  accountData{Account: newAccount(acc)},
	}, nil
}

// Me handles http request to get the authenticated account.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.GetPayload(gctx)

	acc, err := h.service.Get(ctx, payload.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case errors.Is(err, errorspkg.ErrStorageUnavailable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{Account: newAccount(acc)}})
}

// List handles the admin request to list every account without secrets.
func (h *Handler) List(gctx *gin.Context) {
	accounts, err := h.service.List(gctx.Request.Context())
	if err != nil {
		if errors.Is(err, errorspkg.ErrStorageUnavailable) {
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, newAccount(a))
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: struct {
			Accounts []Account `json:"accounts"`
		}{
			Accounts: res,
		},
	})
}
