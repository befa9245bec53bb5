package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow/internal/domain"
	"taskflow/internal/infra/jwks"
)

// Claims are the bearer token claims. Subject carries the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type actorKey struct{}

// Authenticator verifies bearer tokens. HS256 tokens must be signed with the
// shared secret and carry our issuer; RS256 tokens are accepted only when an
// external key set is configured.
type Authenticator struct {
	secret []byte
	issuer string
	keys   *jwks.KeySet
	now    func() time.Time
}

// NewAuthenticator builds an Authenticator. keys may be nil.
func NewAuthenticator(secret, issuer string, keys *jwks.KeySet) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, keys: keys, now: time.Now}
}

// SignToken issues an HS256 token for userID valid for ttl.
func (a *Authenticator) SignToken(userID string, role domain.UserRole, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	now := a.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a raw token into the calling actor.
func (a *Authenticator) Verify(ctx context.Context, raw string) (*domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, a.keyfunc(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if _, hmac := token.Method.(*jwt.SigningMethodHMAC); hmac && claims.Issuer != a.issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	role := domain.UserRole(claims.Role)
	if !role.Valid() {
		role = domain.UserRoleMember
	}
	return domain.NewActor(claims.Subject, role), nil
}

func (a *Authenticator) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return a.secret, nil
		case *jwt.SigningMethodRSA:
			if a.keys == nil {
				return nil, errors.New("rsa tokens are not accepted")
			}
			return a.keys.Keyfunc(ctx)(token)
		}
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
}

// AuthJWT rejects requests without a valid bearer token and stores the actor
// on the request context.
func AuthJWT(auth *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization")
				return
			}
			actor, err := auth.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// ActorFromContext returns the authenticated actor, or nil.
func ActorFromContext(ctx context.Context) *domain.Actor {
	if v, ok := ctx.Value(actorKey{}).(*domain.Actor); ok {
		return v
	}
	return nil
}

func ContextWithActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}
