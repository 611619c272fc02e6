package memstore

import (
	"context"
	"sort"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountRepo is the in-memory identity store.
type AccountRepo struct {
	s *Store
}

// Create stores the account with zero balance. The uniqueness checks and the
// insert happen in one critical section.
func (r *AccountRepo) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	s := r.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[arg.Email]; ok {
		zerolog.Ctx(ctx).Info().Str("email", arg.Email).Msg("duplicate email")
		return domain.Account{}, domain.ErrDuplicateEmail
	}

	if _, ok := s.byCard[arg.CardNumber]; ok {
		zerolog.Ctx(ctx).Warn().Msg("duplicate card number")
		return domain.Account{}, domain.ErrDuplicateCardNumber
	}

	s.nextAccountID++

	a := domain.Account{
		ID:             s.nextAccountID,
		Name:           arg.Name,
		Email:          arg.Email,
		CardNumber:     arg.CardNumber,
		HashedPassword: arg.HashedPassword,
		HashedPin:      arg.HashedPin,
		Balance:        decimal.Zero,
		CreatedAt:      s.now(),
	}

	s.accounts[a.ID] = &accountEntry{account: a}
	s.byEmail[a.Email] = a.ID
	s.byCard[a.CardNumber] = a.ID

	return a, nil
}

// Get returns the account with the given id.
func (r *AccountRepo) Get(_ context.Context, id int64) (domain.Account, error) {
	e, ok := r.s.entry(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return e.snapshot(), nil
}

// GetByEmail returns the account registered with the given email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.s.mu.RLock()
	id, ok := r.s.byEmail[email]
	r.s.mu.RUnlock()

	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.Get(ctx, id)
}

// GetByCardNumber returns the account holding the given card number.
func (r *AccountRepo) GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error) {
	r.s.mu.RLock()
	id, ok := r.s.byCard[cardNumber]
	r.s.mu.RUnlock()

	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.Get(ctx, id)
}

// List returns all accounts ordered by id.
func (r *AccountRepo) List(_ context.Context) ([]domain.Account, error) {
	r.s.mu.RLock()
	entries := make([]*accountEntry, 0, len(r.s.accounts))
	for _, e := range r.s.accounts {
		entries = append(entries, e)
	}
	r.s.mu.RUnlock()

	items := make([]domain.Account, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.snapshot())
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}
