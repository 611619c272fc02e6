package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// IdempotencyKeyHeader is the optional header naming a retryable request.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks responses served from the cache.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"
	redisTimeout      = 2 * time.Second
)

// ErrRequestInProgress indicates a concurrent request with the same idempotency key.
var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request repeated with the same
// Idempotency-Key header. Keys are scoped to the authenticated account, method
// and path. Requests without the header pass through.
//
// Server errors are not stored, so the retry runs again.
func Idempotency(cache *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		key := gctx.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			gctx.Next()
			return
		}

		ctx := gctx.Request.Context()
		l := zerolog.Ctx(ctx)

		owner := "anonymous"
		if p, ok := gctx.Get(AuthPayloadKey); ok {
			if payload, ok := p.(*tokenpkg.Payload); ok {
				owner = fmt.Sprint(payload.AccountID)
			}
		}

		cacheKey := fmt.Sprintf("%s%s:%s:%s:%s", idempotencyPrefix, owner, gctx.Request.Method, gctx.FullPath(), key)

		rctx, cancel := contextWithTimeout(gctx)
		defer cancel()

		cached, err := cache.Get(rctx, cacheKey).Result()

		switch {
		case err == nil && cached == inProgressMarker:
			gctx.AbortWithStatusJSON(http.StatusConflict, web.Error(ErrRequestInProgress))
			return
		case err == nil:
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				l.Error().Err(err).Str("key", key).Msg("cannot decode stored response")
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

				return
			}

			gctx.Header(IdempotentReplayHeader, "true")
			gctx.Data(stored.Status, stored.ContentType, []byte(stored.Body))
			gctx.Abort()

			return
		case !errors.Is(err, redis.Nil):
			l.Error().Err(err).Str("key", key).Msg("idempotency lookup failed")
			gctx.AbortWithStatusJSON(http.StatusServiceUnavailable, web.Error(errorspkg.ErrStorageUnavailable))

			return
		}

		reserved, err := cache.SetNX(rctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			l.Error().Err(err).Str("key", key).Msg("idempotency reservation failed")
			gctx.AbortWithStatusJSON(http.StatusServiceUnavailable, web.Error(errorspkg.ErrStorageUnavailable))

			return
		}

		if !reserved {
			gctx.AbortWithStatusJSON(http.StatusConflict, web.Error(ErrRequestInProgress))
			return
		}

		rec := &bodyRecorder{ResponseWriter: gctx.Writer}
		gctx.Writer = rec

		gctx.Next()

		pctx, cancel := contextWithTimeout(gctx)
		defer cancel()

		release := func() {
			if err := cache.Del(pctx, cacheKey).Err(); err != nil {
				l.Error().Err(err).Str("key", key).Msg("cannot release idempotency key")
			}
		}

		if rec.Status() >= http.StatusInternalServerError {
			release()
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.String(),
		})
		if err != nil {
			l.Error().Err(err).Send()
			release()

			return
		}

		if err := cache.Set(pctx, cacheKey, payload, ttl).Err(); err != nil {
			l.Error().Err(err).Str("key", key).Msg("cannot persist idempotent response")
			release()
		}
	}
}
