package api

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/services"
)

type keyType string

const (
	actorKey     keyType = "actor"
	claimsKey    keyType = "claims"
	authErrorKey keyType = "authError"
)

// ctxWithActor adds the authenticated actor and its token claims to the context
func ctxWithActor(ctx context.Context, actor services.Actor, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, claimsKey, claims)
}

// ctxWithAuthError remembers why a presented token was rejected, so routes that
// require authentication can report it.
func ctxWithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authErrorKey, err)
}

// ctxGetActor returns the request actor, or the anonymous actor.
func ctxGetActor(ctx context.Context) services.Actor {
	if actor, ok := ctx.Value(actorKey).(services.Actor); ok {
		return actor
	}
	return services.Anonymous
}

func ctxGetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func ctxGetAuthError(ctx context.Context) error {
	err, _ := ctx.Value(authErrorKey).(error)
	return err
}
