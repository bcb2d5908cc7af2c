package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AR-Project/wpt-v3/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	cfg := &config.Config{Log: config.LogConfig{Level: "warn"}, Server: config.ServerConfig{Env: "production"}}
	require.NoError(t, InitLogger(cfg))
	assert.False(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, GetLogger().Core().Enabled(zapcore.WarnLevel))

	cfg = &config.Config{Log: config.LogConfig{Level: "loud"}, Server: config.ServerConfig{Env: "development"}}
	require.NoError(t, InitLogger(cfg))
	assert.True(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, GetLogger().Core().Enabled(zapcore.DebugLevel))
}

func TestFromCtx(t *testing.T) {
	global := zap.NewNop()
	prev := GetLogger()
	SetLogger(global)
	t.Cleanup(func() { SetLogger(prev) })

	assert.Same(t, global, FromCtx(context.Background()))

	scoped := zap.NewExample()
	assert.Same(t, scoped, FromCtx(WithLogger(context.Background(), scoped)))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", zap.New(core))
			return next(c)
		}
	})
	e.Use(AccessLog())
	e.GET("/fail", func(c echo.Context) error { return errors.New("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
	assert.Equal(t, "/fail", entries[0].ContextMap()["path"])
}
