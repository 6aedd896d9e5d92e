// Package http provides the net/http middleware surface of the payment gate.
//
// The middleware resolves each request to an operation id, asks the shared
// gate.Dispatcher to admit it, and only then invokes the wrapped handler.
// The handler's response is buffered so the settlement receipt can be
// attached as a header after the handler has run.
package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/gate"
)

// Config holds the configuration for the payment middleware.
type Config struct {
	// Dispatcher is the shared gate dispatcher. Required.
	Dispatcher *gate.Dispatcher

	// Routes is the explicit route registry mapping request paths to
	// operation ids, built once at startup and consulted in O(1). Keys may
	// be "METHOD /path" or bare "/path". Paths with no entry fall back to
	// the path itself with the leading slash trimmed.
	Routes map[string]string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewMiddleware creates payment-gating middleware around the shared
// dispatcher. Operations absent from the pricing catalog pass through with
// zero protocol overhead.
func NewMiddleware(cfg Config) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			operation := cfg.resolveOperation(r)
			resource := BuildResourceURL(r)

			adm, challenge := cfg.Dispatcher.Admit(ctx, operation, resource, r.Header.Get(x402gate.HeaderPayment))
			if challenge != nil {
				writePaymentRequired(w, challenge.Body)
				return
			}

			if !adm.Priced {
				next.ServeHTTP(w, r)
				return
			}

			r = r.WithContext(gate.WithAdmission(ctx, adm))

			// Buffer the handler's response: settlement runs after the
			// handler returns, and its receipt header must be written
			// before the body reaches the client.
			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)

			if buf.status < http.StatusBadRequest {
				receipt, err := cfg.Dispatcher.Settle(ctx, adm)
				if err == nil && receipt != nil {
					attachReceipt(buf.Header(), receipt, logger)
				}
				// On settlement failure the receipt header is omitted; the
				// handler's response is returned regardless.
			} else {
				logger.WarnContext(ctx, "handler returned non-success, skipping settlement",
					"operation", operation, "status", buf.status)
			}

			buf.flushTo(w)
		})
	}
}

func (c Config) resolveOperation(r *http.Request) string {
	if c.Routes != nil {
		if op, ok := c.Routes[r.Method+" "+r.URL.Path]; ok {
			return op
		}
		if op, ok := c.Routes[r.URL.Path]; ok {
			return op
		}
	}
	return strings.TrimPrefix(r.URL.Path, "/")
}

// BuildResourceURL constructs the full URL for the protected resource.
func BuildResourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func writePaymentRequired(w http.ResponseWriter, body x402gate.PaymentRequired) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	_ = json.NewEncoder(w).Encode(body)
}

func attachReceipt(h http.Header, receipt *x402gate.SettleResponse, logger *slog.Logger) {
	encoded, err := x402gate.EncodeSettlement(*receipt)
	if err != nil {
		logger.Warn("failed to encode settlement receipt", "error", err)
		return
	}
	h.Set(x402gate.HeaderPaymentResponse, encoded)
}

// responseBuffer captures the wrapped handler's response so headers can
// still be modified after the handler returns.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *responseBuffer) WriteHeader(statusCode int) {
	b.status = statusCode
}

func (b *responseBuffer) flushTo(w http.ResponseWriter) {
	for key, values := range b.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
