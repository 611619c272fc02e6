package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	server.Use(RequestLogger(logger))
	server.GET("/ok", func(ctx *gin.Context) {
		zerolog.Ctx(ctx.Request.Context()).Info().Msg("inside handler")
		ctx.Status(http.StatusNoContent)
	})
	server.GET("/panic", func(ctx *gin.Context) {
		panic("boom")
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ok", nil)
	request.Header.Set(RequestIDHeader, "req-1")
	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "req-1", recorder.Header().Get(RequestIDHeader))
	require.Contains(t, buf.String(), `"request_id":"req-1"`)
	require.Contains(t, buf.String(), "inside handler")

	buf.Reset()

	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(RequestIDHeader))
	require.Contains(t, buf.String(), "boom")
}
