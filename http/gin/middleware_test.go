package gin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402gate "github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/catalog"
	"github.com/xymanchick/x402gate/facilitator"
	"github.com/xymanchick/x402gate/gate"
)

const testCatalog = `{
  "search": [
    {
      "chain_id": 8453,
      "token_address": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
      "token_amount": 100000,
      "payee_address": "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"
    }
  ]
}`

func newTestRouter(t *testing.T, stub *facilitator.Stub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := gate.New(gate.Config{Catalog: c, Facilitator: stub, Logger: logger})
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewMiddleware(Config{
		Dispatcher: d,
		Routes: map[string]string{
			"/api/search": "search",
			"/api/quote":  "quote",
		},
		Logger: logger,
	}))
	r.GET("/api/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"results": []string{"alpha"}})
	})
	r.GET("/api/quote", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"quote": "free"})
	})
	r.GET("/api/broken", func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream exploded"})
	})
	return r
}

func paymentHeader(t *testing.T, amount string) string {
	t.Helper()
	header, err := x402gate.EncodePayment(x402gate.PaymentPayload{
		X402Version: x402gate.ProtocolVersion,
		Scheme:      x402gate.SchemeExact,
		Network:     x402gate.NetworkBase,
		Asset:       "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Amount:      amount,
		Payload:     map[string]interface{}{"signature": "0xsigned"},
	})
	require.NoError(t, err)
	return header
}

func TestGinMiddleware_NoHeaderChallenges(t *testing.T) {
	r := newTestRouter(t, &facilitator.Stub{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body x402gate.PaymentRequired
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, x402gate.ProtocolVersion, body.X402Version)
	require.Len(t, body.Accepts, 1)
	require.NotNil(t, body.Error)
	assert.Equal(t, "missing payment header", *body.Error)
}

func TestGinMiddleware_PaidRequestSucceeds(t *testing.T) {
	stub := &facilitator.Stub{}
	r := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set(x402gate.HeaderPayment, paymentHeader(t, "100000"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":["alpha"]}`, rec.Body.String())

	encoded := rec.Header().Get(x402gate.HeaderPaymentResponse)
	require.NotEmpty(t, encoded)
	receipt, err := x402gate.DecodeSettlement(encoded)
	require.NoError(t, err)
	assert.True(t, receipt.Success)

	assert.Equal(t, int64(1), stub.VerifyCalls())
	assert.Equal(t, int64(1), stub.SettleCalls())
}

func TestGinMiddleware_VerifyRejectedChallenges(t *testing.T) {
	stub := &facilitator.Stub{
		VerifyResponse: &x402gate.VerifyResponse{IsValid: false, InvalidReason: "bad_signature"},
	}
	r := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set(x402gate.HeaderPayment, paymentHeader(t, "100000"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	var body x402gate.PaymentRequired
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "verification failed", *body.Error)
	assert.Equal(t, int64(0), stub.SettleCalls())
}

func TestGinMiddleware_FreeRoutePassesThrough(t *testing.T) {
	stub := &facilitator.Stub{}
	r := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/quote", nil)
	req.Header.Set(x402gate.HeaderPayment, "@@garbage@@")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), stub.VerifyCalls())
	assert.Empty(t, rec.Header().Get(x402gate.HeaderPaymentResponse))
}

func TestGinMiddleware_UnroutedPathFallsBackToPath(t *testing.T) {
	// "/api/broken" has no Routes entry; it resolves to "api/broken" which is
	// unpriced, so it passes through.
	stub := &facilitator.Stub{}
	r := newTestRouter(t, stub)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, int64(0), stub.VerifyCalls())
}

func TestGinMiddleware_HandlerErrorSkipsSettlement(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := catalog.Parse([]byte(`{"broken": [{
		"chain_id": 8453,
		"token_address": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		"token_amount": 100000,
		"payee_address": "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"
	}]}`))
	require.NoError(t, err)

	stub := &facilitator.Stub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := gate.New(gate.Config{Catalog: c, Facilitator: stub, Logger: logger})
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewMiddleware(Config{
		Dispatcher: d,
		Routes:     map[string]string{"/api/broken": "broken"},
		Logger:     logger,
	}))
	r.GET("/api/broken", func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream exploded"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/broken", nil)
	req.Header.Set(x402gate.HeaderPayment, paymentHeader(t, "100000"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, rec.Header().Get(x402gate.HeaderPaymentResponse))
	assert.Equal(t, int64(1), stub.VerifyCalls())
	assert.Equal(t, int64(0), stub.SettleCalls())
}

func TestGinMiddleware_SettlementFailureKeepsResponse(t *testing.T) {
	stub := &facilitator.Stub{
		SettleResponse: &x402gate.SettleResponse{Success: false, ErrorReason: "insufficient_allowance"},
	}
	r := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set(x402gate.HeaderPayment, paymentHeader(t, "100000"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":["alpha"]}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(x402gate.HeaderPaymentResponse))
}
