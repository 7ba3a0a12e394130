package api

import (
	"context"
	"net/http"
	"strings"

	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
)

// PrincipalResolver turns a bearer token into the calling principal.
type PrincipalResolver interface {
	Resolve(token string) (identityDomain.Principal, error)
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p identityDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// principalFrom returns the principal set by requirePrincipal. The zero
// principal fails every permission check.
func principalFrom(ctx context.Context) identityDomain.Principal {
	p, _ := ctx.Value(principalKey{}).(identityDomain.Principal)
	return p
}

// withRequestContext starts a request scope carrying correlation and
// request ids for the logger.
func withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(headerCorrelationID))
		w.Header().Set(headerCorrelationID, observability.CorrelationIDFromContext(ctx))
		w.Header().Set(headerRequestID, observability.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePrincipal rejects requests without a valid bearer token.
func requirePrincipal(resolver PrincipalResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" || resolver == nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="carecal"`)
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		p, err := resolver.Resolve(strings.TrimSpace(raw))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="carecal", error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}
