package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { client.Close() })

	return mr, client
}

// newIdempotentServer counts handler runs and answers with status.
func newIdempotentServer(client *redis.Client, status int, calls *atomic.Int32) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	asAccount := func(ctx *gin.Context) {
		var id int64 = 1
		if ctx.GetHeader("X-Test-Account") == "2" {
			id = 2
		}

		ctx.Set(AuthPayloadKey, &tokenpkg.Payload{AccountID: id})
		ctx.Next()
	}

	server.POST("/deposit", asAccount, Idempotency(client, time.Hour), func(ctx *gin.Context) {
		n := calls.Add(1)
		ctx.JSON(status, gin.H{"call": n})
	})

	return server
}

func post(server *gin.Engine, key, account string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/deposit", nil)

	if key != "" {
		request.Header.Set(IdempotencyKeyHeader, key)
	}

	if account != "" {
		request.Header.Set("X-Test-Account", account)
	}

	server.ServeHTTP(recorder, request)

	return recorder
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusOK, &calls)

	first := post(server, "abc", "")
	second := post(server, "abc", "")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
	require.Empty(t, first.Header().Get(IdempotentReplayHeader))
	require.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusOK, &calls)

	post(server, "", "")
	post(server, "", "")

	require.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyKeysAreScopedToAccount(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusCreated, &calls)

	post(server, "same", "1")
	post(server, "same", "2")

	require.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyClientErrorsAreReplayed(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusUnprocessableEntity, &calls)

	first := post(server, "k", "")
	second := post(server, "k", "")

	require.Equal(t, http.StatusUnprocessableEntity, first.Code)
	require.Equal(t, http.StatusUnprocessableEntity, second.Code)
	require.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyServerErrorsReleaseKey(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusServiceUnavailable, &calls)

	post(server, "k", "")
	require.Empty(t, mr.Keys())

	post(server, "k", "")
	require.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyInProgress(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusOK, &calls)

	err := client.Set(context.Background(), idempotencyPrefix+"1:POST:/deposit:busy", inProgressMarker, time.Hour).Err()
	require.NoError(t, err)

	recorder := post(server, "busy", "")

	require.Equal(t, http.StatusConflict, recorder.Code)
	require.Contains(t, recorder.Body.String(), ErrRequestInProgress.Error())
	require.Zero(t, calls.Load())
}

func TestIdempotencyRedisDown(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusOK, &calls)

	mr.Close()

	recorder := post(server, "k", "")

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	require.Zero(t, calls.Load())
}

func TestIdempotencyLogsFailedRelease(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	server.POST("/deposit", Idempotency(client, time.Hour), func(ctx *gin.Context) {
		mr.Close()
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/deposit", nil)
	request.Header.Set(IdempotencyKeyHeader, "abc")
	request = request.WithContext(logger.WithContext(request.Context()))

	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, logs.String(), "cannot persist idempotent response")
	require.Contains(t, logs.String(), "cannot release idempotency key")
}

func TestIdempotencyStoredEntryExpires(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)

	var calls atomic.Int32
	server := newIdempotentServer(client, http.StatusOK, &calls)

	post(server, "k", "")
	mr.FastForward(2 * time.Hour)
	post(server, "k", "")

	require.EqualValues(t, 2, calls.Load())
}

func TestNewRedisClient(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = NewRedisClient(context.Background(), "not a url")
	require.Error(t, err)
}
