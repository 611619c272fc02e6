package tokenpkg

import (
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	accountID := randompkg.Intn(1000) + 1
	email := randompkg.Email()
	duration := time.Minute

	token, payload, err := maker.CreateToken(accountID, email, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v, %v) returned error: %v", accountID, email, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		AccountID: accountID,
		Email:     email,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v, %v) returned unexpected diff: %v", accountID, email, duration, diff)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	duration := -time.Minute

	token, _, err := maker.CreateToken(1, randompkg.Email(), duration)
	if err != nil {
		t.Errorf("maker.CreateToken(1, email, %v) returned error: %v", duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestPasetoWrongKey(t *testing.T) {
	t.Parallel()

	maker1, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker returned error: %v", err)
	}

	maker2, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker returned error: %v", err)
	}

	token, _, err := maker1.CreateToken(1, randompkg.Email(), time.Minute)
	if err != nil {
		t.Fatalf("maker1.CreateToken returned error: %v", err)
	}

	if _, err = maker2.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("maker2.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestNewMaker(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	if m, err := NewMaker(KindPaseto, key); err != nil {
		t.Errorf("NewMaker(%v) returned error: %v", KindPaseto, err)
	} else if _, ok := m.(*PasetoMaker); !ok {
		t.Errorf("NewMaker(%v) = %T, want *PasetoMaker", KindPaseto, m)
	}

	if m, err := NewMaker(KindJWT, key); err != nil {
		t.Errorf("NewMaker(%v) returned error: %v", KindJWT, err)
	} else if _, ok := m.(*JWTMaker); !ok {
		t.Errorf("NewMaker(%v) = %T, want *JWTMaker", KindJWT, m)
	}

	if _, err := NewMaker("unknown", key); err == nil {
		t.Error("NewMaker(unknown) returned nil error")
	}
}
