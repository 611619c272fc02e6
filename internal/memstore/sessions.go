package memstore

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
)

// SessionRepo is the in-memory session store.
type SessionRepo struct {
	s *Store
}

// Create stores the session of an existing account and then returns it.
func (r *SessionRepo) Create(_ context.Context, arg domain.CreateSessionParams) (domain.Session, error) {
	if _, ok := r.s.entry(arg.AccountID); !ok {
		return domain.Session{}, domain.ErrAccountNotFound
	}

	sess := domain.Session{
		ID:           arg.ID,
		AccountID:    arg.AccountID,
		Email:        arg.Email,
		RefreshToken: arg.RefreshToken,
		UserAgent:    arg.UserAgent,
		ClientIP:     arg.ClientIP,
		IsBlocked:    arg.IsBlocked,
		ExpiresAt:    arg.ExpiresAt,
		CreatedAt:    r.s.now(),
	}

	r.s.sessionMu.Lock()
	defer r.s.sessionMu.Unlock()

	r.s.sessions[sess.ID] = sess

	return sess, nil
}

// Get returns the session with the given id.
func (r *SessionRepo) Get(_ context.Context, id uuid.UUID) (domain.Session, error) {
	r.s.sessionMu.RLock()
	defer r.s.sessionMu.RUnlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return sess, nil
}
