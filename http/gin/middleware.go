// Package gin provides Gin-compatible middleware for the payment gate. It is
// a thin adapter that resolves the operation from the matched route and
// delegates every gating decision to the shared gate.Dispatcher, so behavior
// is identical to the net/http surface.
package gin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/gate"
	x402http "github.com/xymanchick/x402gate/http"
)

// Config holds the configuration for the Gin payment middleware.
type Config struct {
	// Dispatcher is the shared gate dispatcher. Required.
	Dispatcher *gate.Dispatcher

	// Routes maps Gin route patterns (c.FullPath()) to operation ids.
	// Patterns with no entry fall back to the pattern with the leading
	// slash trimmed.
	Routes map[string]string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewMiddleware creates a payment-gating gin.HandlerFunc around the shared
// dispatcher. On a challenge it aborts the handler chain with a 402 body;
// on admission the chain proceeds and settlement runs at response commit
// time so the receipt header lands before the first body byte.
func NewMiddleware(cfg Config) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		operation := cfg.resolveOperation(c)
		resource := x402http.BuildResourceURL(c.Request)

		adm, challenge := cfg.Dispatcher.Admit(ctx, operation, resource, c.GetHeader(x402gate.HeaderPayment))
		if challenge != nil {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, challenge.Body)
			return
		}

		if !adm.Priced {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(gate.WithAdmission(ctx, adm))
		c.Writer = &settlementWriter{
			ResponseWriter: c.Writer,
			settle: func(status int) {
				if status >= http.StatusBadRequest {
					logger.WarnContext(ctx, "handler returned non-success, skipping settlement",
						"operation", operation, "status", status)
					return
				}
				receipt, err := cfg.Dispatcher.Settle(ctx, adm)
				if err != nil || receipt == nil {
					return
				}
				encoded, err := x402gate.EncodeSettlement(*receipt)
				if err != nil {
					logger.Warn("failed to encode settlement receipt", "error", err)
					return
				}
				c.Writer.Header().Set(x402gate.HeaderPaymentResponse, encoded)
			},
		}
		c.Next()
	}
}

func (c Config) resolveOperation(gc *gin.Context) string {
	pattern := gc.FullPath()
	if pattern == "" {
		pattern = gc.Request.URL.Path
	}
	if c.Routes != nil {
		if op, ok := c.Routes[pattern]; ok {
			return op
		}
	}
	return strings.TrimPrefix(pattern, "/")
}

// settlementWriter intercepts the moment the response commits. Settlement
// must run before the first body byte reaches the wire since the receipt
// travels in a header.
type settlementWriter struct {
	gin.ResponseWriter
	settle func(status int)
	done   bool
}

func (w *settlementWriter) WriteHeader(statusCode int) {
	w.ensureSettled(statusCode)
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *settlementWriter) Write(p []byte) (int, error) {
	w.ensureSettled(w.Status())
	return w.ResponseWriter.Write(p)
}

func (w *settlementWriter) WriteString(s string) (int, error) {
	w.ensureSettled(w.Status())
	return w.ResponseWriter.WriteString(s)
}

func (w *settlementWriter) ensureSettled(status int) {
	if w.done {
		return
	}
	w.done = true
	w.settle(status)
}
