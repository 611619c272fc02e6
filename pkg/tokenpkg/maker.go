// Package tokenpkg creates and verifies access tokens.
package tokenpkg

import (
	"fmt"
	"time"
)

// Token kinds accepted by NewMaker.
const (
	KindPaseto = "paseto"
	KindJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for the account and duration.
	CreateToken(accountID int64, email string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the Maker of the given kind.
func NewMaker(kind, key string) (Maker, error) {
	switch kind {
	case KindPaseto, "":
		return NewPasetoMaker(key)
	case KindJWT:
		return NewJWTMaker(key)
	}

	return nil, fmt.Errorf("unsupported token kind %q", kind)
}
