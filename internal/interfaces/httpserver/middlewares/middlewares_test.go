package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var seenCtxID any
	var seenGinID string
	router.GET("/probe", func(c *gin.Context) {
		seenCtxID = c.Request.Context().Value("requestID")
		seenGinID = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	headerID := rec.Header().Get(RequestIDHeader)
	if headerID == "" {
		t.Fatal("Expected a generated request id in the response header")
	}
	if _, err := uuid.Parse(headerID); err != nil {
		t.Errorf("Expected a UUID request id, got %q", headerID)
	}
	if seenGinID != headerID {
		t.Errorf("Expected gin context id %q to match header, got %q", headerID, seenGinID)
	}
	if seenCtxID != headerID {
		t.Errorf("Expected request context id %q to match header, got %v", headerID, seenCtxID)
	}
}

func TestRequestIDReusesIncomingHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Errorf("Expected the incoming id echoed back, got %q", got)
	}
}

func TestCORSHeaders(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
	allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
	for _, header := range []string{"Authorization", "Mcp-Session-Id", "mcp-protocol-version", "X-Request-Id"} {
		if !strings.Contains(allowHeaders, header) {
			t.Errorf("Expected %q in allowed headers, got %q", header, allowHeaders)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	handlerCalled := false
	router.OPTIONS("/probe", func(c *gin.Context) { handlerCalled = true })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/probe", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if handlerCalled {
		t.Error("Preflight requests must not reach route handlers")
	}
}
