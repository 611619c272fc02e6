// Package middleware provides gin middlewares shared by all routes.
package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

const (
	// AuthHeaderKey is the header carrying the access token.
	AuthHeaderKey = "authorization"
	// AuthTypeBearer is the only supported authorization type.
	AuthTypeBearer = "bearer"
	// AuthPayloadKey is the gin context key of the verified *tokenpkg.Payload.
	AuthPayloadKey = "authorization_payload"
	// AdminKeyHeader is the header carrying the admin API key.
	AdminKeyHeader = "X-Admin-Key"
)

var (
	// ErrAuthHeaderNotFound indicates a request without authorization header.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")
	// ErrBadAuthHeaderFormat indicates an authorization header that is not "<type> <token>".
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	// ErrUnsupportedAuthType indicates an authorization type other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
	// ErrInvalidAdminKey indicates a missing or wrong admin API key.
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// AddAuthorization sets the authorization header of the request to a fresh token.
func AddAuthorization(r *http.Request, tm tokenpkg.Maker, authType string,
	accountID int64, email string, duration time.Duration,
) error {
	token, _, err := tm.CreateToken(accountID, email, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer token and stores its payload under AuthPayloadKey.
func AuthMiddleware(tm tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		payload, err := tm.VerifyToken(fields[1])
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// GetPayload returns the verified token payload stored by AuthMiddleware.
func GetPayload(gctx *gin.Context) *tokenpkg.Payload {
	return gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)
}

// AdminKey lets through requests whose X-Admin-Key header equals key.
// An empty key disables the guarded routes.
func AdminKey(key string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		got := gctx.GetHeader(AdminKeyHeader)

		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrInvalidAdminKey))
			return
		}

		gctx.Next()
	}
}
