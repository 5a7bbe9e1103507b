package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nuworks/authcore"
)

// Verifier is the part of *authcore.Engine the guards need.
type Verifier interface {
	VerifyAccess(ctx context.Context, token string) (*authcore.VerifyResult, error)
	IsRevoked(ctx context.Context, userID, token string) (bool, error)
}

type verifyResultContextKey struct{}

// ResultFromContext returns the verification result stored by a guard.
func ResultFromContext(ctx context.Context) (*authcore.VerifyResult, bool) {
	res, ok := ctx.Value(verifyResultContextKey{}).(*authcore.VerifyResult)
	return res, ok
}

// UserID returns the authenticated user id stored by a guard.
func UserID(ctx context.Context) (string, bool) {
	return authcore.UserIDFromContext(ctx)
}

// Guard verifies the bearer access token and rejects tokens that have been
// revoked by logout.
func Guard(v Verifier) func(http.Handler) http.Handler {
	return guard(v, true)
}

func guard(v Verifier, checkRevoked bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := v.VerifyAccess(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			if checkRevoked {
				revoked, err := v.IsRevoked(r.Context(), res.UserID, token)
				if err != nil {
					writeError(w, err)
					return
				}
				if revoked {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
			}

			ctx := authcore.WithUserID(r.Context(), res.UserID)
			ctx = context.WithValue(ctx, verifyResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authcore.ErrTokenExpired):
		http.Error(w, "token expired", http.StatusUnauthorized)
	case errors.Is(err, authcore.ErrInfrastructure):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
