// Package cardalloc assigns unique card numbers to new accounts.
package cardalloc

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/rs/zerolog"
)

// MaxAttempts bounds the number of draws per allocation.
const MaxAttempts = 10

// Repo provides the card number lookup needed by the allocator.
//
//go:generate mockgen -source allocator.go -destination allocator_mock.go -package cardalloc
type Repo interface {
	GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error)
}

// Allocator draws random card numbers until it finds one no account holds.
//
// The check is advisory: two allocators may return the same number, and the
// identity store's unique create is what finally rejects the loser.
type Allocator struct {
	repo     Repo
	generate func() string
}

// New returns an Allocator drawing 16 crypto random digits.
func New(repo Repo) *Allocator {
	return &Allocator{
		repo:     repo,
		generate: randompkg.CardNumber,
	}
}

// Allocate returns a card number not held by any account.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	l := zerolog.Ctx(ctx)

	for i := 0; i < MaxAttempts; i++ {
		card := a.generate()

		_, err := a.repo.GetByCardNumber(ctx, card)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return card, nil
		}

		if err != nil {
			return "", err
		}

		l.Warn().Int("attempt", i+1).Msg("card number collision")
	}

	l.Error().Int("attempts", MaxAttempts).Msg("card number space exhausted")

	return "", domain.ErrCardNumberExhausted
}
