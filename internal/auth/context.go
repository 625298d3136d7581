package auth

import (
	"context"

	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity attaches a verified claim to ctx.
func WithIdentity(ctx context.Context, claim model.IdentityClaim) context.Context {
	return context.WithValue(ctx, identityKey, claim)
}

// IdentityFromContext returns the claim attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (model.IdentityClaim, bool) {
	claim, ok := ctx.Value(identityKey).(model.IdentityClaim)
	return claim, ok
}
