package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, handler gin.HandlerFunc, path string) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(requestIDKey, "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/things/:id", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w, recorded
}

func findAccessLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no access log entry written")
	return observer.LoggedEntry{}
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs one access line with request context", func(t *testing.T) {
		w, recorded := serveLogged(t, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}, "/things/7?verbose=1")

		require.Equal(t, http.StatusOK, w.Code)
		entry := findAccessLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "/things/7", fields["path"])
		assert.Equal(t, "/things/:id", fields["route"])
		assert.Equal(t, "verbose=1", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("server errors are logged at error level", func(t *testing.T) {
		_, recorded := serveLogged(t, func(c *gin.Context) {
			c.AbortWithStatus(http.StatusInternalServerError)
		}, "/things/7")

		entry := findAccessLog(t, recorded)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})

	t.Run("client errors are logged at warn level", func(t *testing.T) {
		_, recorded := serveLogged(t, func(c *gin.Context) {
			c.AbortWithStatus(http.StatusNotFound)
		}, "/things/7")

		entry := findAccessLog(t, recorded)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		l := zap.NewExample()
		c.Set(loggerKey, l)
		assert.Same(t, l, GetGinLogger(c))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}
