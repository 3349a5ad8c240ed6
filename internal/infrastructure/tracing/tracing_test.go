package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New("test", nil)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, strings.HasPrefix(string(root.TraceID), "req_"))
	assert.True(t, strings.HasPrefix(string(root.SpanID), "span_"))
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))

	headers := http.Header{}
	ToHeaders(childCtx, headers)
	traceID, spanID := FromHeaders(headers)
	assert.Equal(t, root.TraceID, traceID)
	assert.Equal(t, child.SpanID, spanID)
}

func TestCloseDrainsSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", zap.New(core))

	for i := 0; i < 3; i++ {
		span, _ := tracer.StartSpan(context.Background(), "op")
		span.Finish()
		tracer.Submit(span)
	}
	failed, _ := tracer.StartSpan(context.Background(), "broken")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()
	tracer.Submit(failed)

	assert.Equal(t, 3, logs.FilterMessage("span completed").Len())
	errs := logs.FilterMessage("span completed with error").All()
	require.Len(t, errs, 1)
	assert.Equal(t, int64(500), errs[0].ContextMap()["status"])
}

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", zap.New(core))

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	var seen TraceID
	router.GET("/windows/:id", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/windows/about", nil)
	req.Header.Set(HeaderTraceID, "req_client")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req_client", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
	assert.Equal(t, TraceID("req_client"), seen)

	tracer.Close()
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /windows/:id", fields["operation"])
	assert.Equal(t, "about", fields["window"])
	assert.Equal(t, "204", fields["http.status"])
}

func TestHTTPMiddlewareWithoutWindow(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", zap.New(core))

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.True(t, strings.HasPrefix(w.Header().Get(HeaderTraceID), "req_"))

	tracer.Close()
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "window")
	assert.Equal(t, "GET unmatched", entries[1].ContextMap()["operation"])
}
