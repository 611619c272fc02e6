// Package ledgerservice manages business logic layer of the ledger.
package ledgerservice

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-petr/pet-ledger/internal/authservice"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides ledger data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	ApplyDelta(ctx context.Context, accountID int64, delta decimal.Decimal,
		entry domain.CreateTransactionParams) (domain.BalanceResult, error)
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
	History(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// AccountRepo provides account lookups needed by ledger service layer.
type AccountRepo interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	ledger   Repo
	accounts AccountRepo
	now      func() time.Time
}

// New returns ledger service struct to manage deposits, withdrawals and transfers.
func New(lr Repo, ar AccountRepo) *Service {
	return &Service{
		ledger:   lr,
		accounts: ar,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	d, err := moneypkg.Parse(amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("amount", amount).Send()
		return d, domain.ErrInvalidAmount
	}

	return d, nil
}

// NormalizeCardNumber removes surrounding and internal whitespace.
func NormalizeCardNumber(card string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, card)
}

// Deposit adds amount to the account balance.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount string) (domain.BalanceResult, error) {
	d, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.BalanceResult{}, err
	}

	return s.ledger.ApplyDelta(ctx, accountID, d, domain.CreateTransactionParams{
		AccountID: accountID,
		Kind:      domain.KindDeposit,
		Amount:    d,
		CreatedAt: s.now(),
	})
}

// Withdraw takes amount from the account balance after checking the PIN.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount, pin string) (domain.BalanceResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.BalanceResult

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return result, err
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return result, err
	}

	if !authservice.VerifyPin(pin, account.HashedPin) {
		l.Warn().Int64("account_id", accountID).Msg("invalid PIN on withdraw")
		return result, domain.ErrInvalidPin
	}

	return s.ledger.ApplyDelta(ctx, accountID, d.Neg(), domain.CreateTransactionParams{
		AccountID: accountID,
		Kind:      domain.KindWithdraw,
		Amount:    d,
		CreatedAt: s.now(),
	})
}

// Transfer moves amount from the sender to the account holding targetCard.
//
// Checks run in order: amount, sender PIN, target existence, self transfer,
// funds. The first failing check decides the returned error.
func (s *Service) Transfer(ctx context.Context, senderID int64, targetCard, amount, pin string) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferResult

	d, err := parseAmount(ctx, amount)
	if err != nil {
		return result, err
	}

	targetCard = NormalizeCardNumber(targetCard)

	sender, err := s.accounts.Get(ctx, senderID)
	if err != nil {
		return result, err
	}

	if !authservice.VerifyPin(pin, sender.HashedPin) {
		l.Warn().Int64("account_id", senderID).Msg("invalid PIN on transfer")
		return result, domain.ErrInvalidPin
	}

	target, err := s.accounts.GetByCardNumber(ctx, targetCard)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return result, domain.ErrTargetNotFound
		}

		return result, err
	}

	if target.ID == sender.ID {
		return result, domain.ErrSelfTransfer
	}

	return s.ledger.Transfer(ctx, domain.TransferParams{
		FromAccountID:    sender.ID,
		ToAccountID:      target.ID,
		TargetCardNumber: target.CardNumber,
		Amount:           d,
		TransferID:       uuid.New(),
		CreatedAt:        s.now(),
	})
}

// CheckBalance returns the current balance of the account.
func (s *Service) CheckBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return s.ledger.GetBalance(ctx, accountID)
}

// History returns the account's log entries, most recent first.
func (s *Service) History(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}

	return s.ledger.History(ctx, accountID)
}
