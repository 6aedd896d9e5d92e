package gate

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const admissionContextKey = contextKey("x402_admission")

// WithAdmission stores the admission in the context so the wrapped handler
// can inspect the verified payment.
func WithAdmission(ctx context.Context, adm *Admission) context.Context {
	return context.WithValue(ctx, admissionContextKey, adm)
}

// AdmissionFromContext extracts the admission placed by a surface adapter.
// Returns nil when the request was not payment-gated.
func AdmissionFromContext(ctx context.Context) *Admission {
	adm, _ := ctx.Value(admissionContextKey).(*Admission)
	return adm
}
