package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("unit-test-secret")

func TestIssueResolveRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret)
	tok, err := svc.Issue("alice", 42, "admin", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := svc.Resolve(tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.Username != "alice" || id.UserID != 42 || id.Role != "admin" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if !id.IsAdmin() {
		t.Fatal("expected admin identity")
	}
}

func TestResolveExpired(t *testing.T) {
	svc := NewTokenService(testSecret)
	tok, err := svc.Issue("alice", 42, "user", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("resolve err = %v, want ErrTokenExpired", err)
	}
}

func TestResolveTamperedSignature(t *testing.T) {
	svc := NewTokenService(testSecret)
	tok, err := svc.Issue("alice", 42, "user", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	sig := parts[2]
	flipped := "A"
	if sig[0] == 'A' {
		flipped = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + flipped + sig[1:]
	if _, err := svc.Resolve(tampered); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("resolve err = %v, want ErrTokenMalformed", err)
	}
}

func TestResolveForeignSecret(t *testing.T) {
	other := NewTokenService([]byte("some-other-secret"))
	tok, err := other.Issue("alice", 42, "user", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc := NewTokenService(testSecret)
	if _, err := svc.Resolve(tok); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("resolve err = %v, want ErrTokenMalformed", err)
	}
}

func TestResolveGarbage(t *testing.T) {
	svc := NewTokenService(testSecret)
	if _, err := svc.Resolve("not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("resolve err = %v, want ErrTokenMalformed", err)
	}
}

func TestResolveMissingClaims(t *testing.T) {
	svc := NewTokenService(testSecret)

	sign := func(claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}
	exp := time.Now().Add(time.Hour).Unix()

	noID := sign(jwt.MapClaims{"sub": "alice", "exp": exp})
	if _, err := svc.Resolve(noID); !errors.Is(err, ErrTokenMissingClaims) {
		t.Fatalf("resolve without id: err = %v, want ErrTokenMissingClaims", err)
	}

	noSub := sign(jwt.MapClaims{"id": 42, "exp": exp})
	if _, err := svc.Resolve(noSub); !errors.Is(err, ErrTokenMissingClaims) {
		t.Fatalf("resolve without sub: err = %v, want ErrTokenMissingClaims", err)
	}
}

func TestResolveAbsentRoleIsNotAdmin(t *testing.T) {
	svc := NewTokenService(testSecret)
	tok, err := svc.Issue("alice", 42, "", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := svc.Resolve(tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.Role != "" {
		t.Fatalf("role = %q, want empty", id.Role)
	}
	if id.IsAdmin() {
		t.Fatal("token without role claim must not be admin")
	}
}

func TestResolveRejectsUnsignedToken(t *testing.T) {
	claims := jwt.MapClaims{"sub": "alice", "id": 42, "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	svc := NewTokenService(testSecret)
	if _, err := svc.Resolve(tok); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("resolve err = %v, want ErrTokenMalformed", err)
	}
}
