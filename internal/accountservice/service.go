// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/authservice"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// maxRegisterAttempts bounds the allocate and create cycles of one registration.
const maxRegisterAttempts = 3

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// CardAllocator provides fresh card numbers.
type CardAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo  Repo
	cards CardAllocator
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, ca CardAllocator) *Service {
	return &Service{
		repo:  ar,
		cards: ca,
	}
}

// Register creates an account with zero balance and a freshly allocated card number.
func (s *Service) Register(ctx context.Context, name, email, password, pin string) (domain.AccountPublic, error) {
	l := zerolog.Ctx(ctx)

	var result domain.AccountPublic

	hashedPin, err := authservice.HashPin(pin)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPinFormat) {
			return result, err
		}

		l.Error().Err(err).Send()

		return result, errorspkg.ErrInternal
	}

	hashedPassword, err := authservice.HashPassword(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	for attempt := 1; ; attempt++ {
		card, err := s.cards.Allocate(ctx)
		if err != nil {
			return result, err
		}

		account, err := s.repo.Create(ctx, domain.CreateAccountParams{
			Name:           name,
			Email:          email,
			CardNumber:     card,
			HashedPassword: hashedPassword,
			HashedPin:      hashedPin,
		})

		switch {
		case err == nil:
			l.Info().Int64("account_id", account.ID).Msg("account registered")
			return account.Public(), nil
		case errors.Is(err, domain.ErrDuplicateCardNumber) && attempt < maxRegisterAttempts:
			l.Warn().Int("attempt", attempt).Msg("card number taken concurrently, retrying")
		case errors.Is(err, domain.ErrDuplicateCardNumber):
			return result, domain.ErrCardNumberExhausted
		default:
			return result, err
		}
	}
}

// Login checks the credentials and returns the account they belong to.
// An unknown email and a wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (domain.AccountPublic, error) {
	l := zerolog.Ctx(ctx)

	var result domain.AccountPublic

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return result, domain.ErrInvalidCredentials
		}

		return result, err
	}

	if !authservice.VerifyPassword(password, account.HashedPassword) {
		l.Warn().Int64("account_id", account.ID).Msg("wrong password")
		return result, domain.ErrInvalidCredentials
	}

	return account.Public(), nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.AccountPublic, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.AccountPublic{}, err
	}

	return account.Public(), nil
}

// List returns all accounts ordered by id, without credentials.
func (s *Service) List(ctx context.Context) ([]domain.AccountPublic, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.AccountPublic, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, a.Public())
	}

	return result, nil
}
