// Package memstore provides concurrency safe in-memory implementations of the
// account, ledger and session repositories.
//
// It backs DB_DRIVER=memory and the engine's concurrency tests.
package memstore

import (
	"sync"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
)

// Store holds all in-memory state. Use Accounts, Ledger and Sessions to get
// the repository views over it.
type Store struct {
	// mu guards the account maps and id counter. Account balances are guarded
	// by the per-account mutex instead.
	mu            sync.RWMutex
	accounts      map[int64]*accountEntry
	byEmail       map[string]int64
	byCard        map[string]int64
	nextAccountID int64

	// logMu guards the transaction log and id counter.
	logMu     sync.Mutex
	log       map[int64][]domain.Transaction
	nextTxID  int64
	sessionMu sync.RWMutex
	sessions  map[uuid.UUID]domain.Session

	now func() time.Time
}

type accountEntry struct {
	mu      sync.Mutex
	account domain.Account
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[int64]*accountEntry),
		byEmail:  make(map[string]int64),
		byCard:   make(map[string]int64),
		log:      make(map[int64][]domain.Transaction),
		sessions: make(map[uuid.UUID]domain.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepo {
	return &AccountRepo{s: s}
}

// Ledger returns the ledger repository view.
func (s *Store) Ledger() *LedgerRepo {
	return &LedgerRepo{s: s}
}

// Sessions returns the session repository view.
func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{s: s}
}

func (s *Store) entry(id int64) (*accountEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.accounts[id]

	return e, ok
}

// snapshot copies the account under its lock.
func (e *accountEntry) snapshot() domain.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.account
}

// appendLog assigns ids and appends the entries. The caller holds the
// account locks of every entry's owner.
func (s *Store) appendLog(params ...domain.CreateTransactionParams) []domain.Transaction {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	out := make([]domain.Transaction, 0, len(params))

	for _, p := range params {
		s.nextTxID++

		t := domain.Transaction{
			ID:               s.nextTxID,
			AccountID:        p.AccountID,
			Kind:             p.Kind,
			Amount:           p.Amount,
			TargetCardNumber: p.TargetCardNumber,
			TransferID:       p.TransferID,
			CreatedAt:        p.CreatedAt,
		}

		s.log[p.AccountID] = append(s.log[p.AccountID], t)
		out = append(out, t)
	}

	return out
}
