package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/campus-records/pkg/config"
	"github.com/noah-isme/campus-records/pkg/middleware/requestid"
)

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "loud", Format: "console"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestFromFallsBack(t *testing.T) {
	fallback := zap.NewExample()
	assert.Same(t, fallback, From(context.Background(), fallback))
	assert.NotNil(t, From(context.Background(), nil))

	stored := zap.NewNop()
	assert.Same(t, stored, From(Into(context.Background(), stored), fallback))
}

func TestGinMiddlewareLogsPerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/students/:id", func(c *gin.Context) {
		From(c.Request.Context(), nil).Info("inside handler")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/students/S9", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	access := entries[1]
	assert.Equal(t, zapcore.WarnLevel, access.Level)
	assert.Equal(t, "/students/:id", access.ContextMap()["route"])
	assert.Equal(t, "req-1", access.ContextMap()["request_id"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, "unmatched", entries[3].ContextMap()["route"])
}
