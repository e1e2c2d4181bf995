package httpx

import (
	"context"
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/rs/zerolog/hlog"
	"net/http"
	"strings"
)

type callerKey struct{}

// Claims is the token issued by the identity service: sub is the user id.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity resolves the bearer token into a domain.Caller when one is present.
// Requests without a token pass through anonymously; a malformed or expired token is rejected.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSONUnauthenticated(w)
				return
			}

			caller, err := ParseCaller(secret, token)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("reject token")
				writeJSONUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// ParseCaller verifies an HS256 token and converts its claims. Unknown roles are ignored.
func ParseCaller(secret []byte, token string) (domain.Caller, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Caller{}, err
	}
	if !parsed.Valid {
		return domain.Caller{}, errors.New("token is not valid")
	}

	if claims.Subject == "" {
		return domain.Caller{}, errors.New("token has no subject")
	}

	caller := domain.Caller{ID: claims.Subject}
	for _, raw := range claims.Roles {
		if role, err := domain.ToRole(raw); err == nil {
			caller.Roles = append(caller.Roles, role)
		}
	}

	return caller, nil
}

func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}

// RequireCaller rejects anonymous requests with 401.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFrom(r.Context()); !ok {
			writeJSONUnauthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
}
