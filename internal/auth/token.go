package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession indicates a session token that failed verification:
// bad signature, malformed payload, or elapsed expiry.
var ErrInvalidSession = errors.New("auth: invalid session")

// Identity is the authenticated principal carried by a session token.
type Identity struct {
	ID    int64
	Email string
}

type sessionClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens. Tokens are
// stateless: validity is determined entirely by signature and expiry, so
// an issued token stays valid for its full lifetime.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager signing with HS256.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for the identity.
func (m *TokenManager) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: identity.ID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a session token.
func (m *TokenManager) Verify(token string) (Identity, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidSession
	}
	return Identity{ID: claims.UserID, Email: claims.Email}, nil
}

const bearerPrefix = "bearer "

// TokenFromRequest locates the session token: the named cookie first,
// then the Authorization header with a Bearer scheme. Any other scheme
// counts as no token found, not as an invalid token.
func TokenFromRequest(r *http.Request, cookieName string) (string, bool) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) {
		return "", false
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
