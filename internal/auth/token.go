package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mberrie/todoapp-service/pkg/utilities"
)

// RoleAdmin is the only role granting access to the admin surface.
const RoleAdmin = "admin"

// Identity is the decoded, verified result of a token. It lives for one
// request and is never mutated after Resolve returns it.
type Identity struct {
	Username string
	UserID   int64
	Role     string
}

// IsAdmin reports whether the identity carries the admin role. Tokens minted
// before the role claim existed carry Role == ""; that always means no
// elevated privilege.
func (id *Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// sentinel errors for token rejection; the HTTP boundary collapses all of
// them into a single 401 while logs keep the reason
var (
	ErrTokenMalformed     = errors.New("token malformed or signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMissingClaims = errors.New("token missing sub or id claim")
)

// Claims is the payload of issued access tokens.
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Config holds token-issuance settings.
type Config struct {
	Secret []byte
	// APITokenTTL bounds bearer tokens returned in the login response body.
	APITokenTTL time.Duration
	// WebTokenTTL bounds tokens set as the session cookie.
	WebTokenTTL time.Duration
}

// ConfigFromEnv reads token settings from env vars. JWT_SECRET must be set;
// there is no built-in default secret.
func ConfigFromEnv() (Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	cfg := Config{
		Secret:      []byte(secret),
		APITokenTTL: ttlFromEnv("JWT_API_TTL_MINUTES", 20*time.Minute),
		WebTokenTTL: ttlFromEnv("JWT_WEB_TTL_MINUTES", 60*time.Minute),
	}
	return cfg, nil
}

func ttlFromEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

// TokenService issues and resolves signed identity tokens. The signing
// secret is process-wide and read-only after construction; rotating it
// invalidates all outstanding tokens.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

// Issue mints an HS256-signed token carrying the identity facts. ttl is
// caller-supplied so API and web-session tokens can use distinct lifetimes.
func (s *TokenService) Issue(username string, userID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        utilities.NewTokenID(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Resolve decodes and verifies a presented token. It is a purely local
// cryptographic check; no storage is consulted. Any bit flip in the token
// invalidates its signature.
func (s *TokenService) Resolve(tokenString string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, ErrTokenMissingClaims
	}
	return &Identity{Username: claims.Subject, UserID: claims.UserID, Role: claims.Role}, nil
}
