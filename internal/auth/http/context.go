// Package http provides the authentication endpoints and middleware that resolve a bearer
// token to the client acting as registry caller.
package http

import (
	"context"

	authDomain "github.com/allisson/claims/internal/auth/domain"
)

type clientKey struct{}

// WithClient stores an authenticated client in the context.
func WithClient(ctx context.Context, client *authDomain.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// GetClient retrieves the authenticated client stored by AuthenticationMiddleware.
func GetClient(ctx context.Context) (*authDomain.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*authDomain.Client)
	return client, ok && client != nil
}
