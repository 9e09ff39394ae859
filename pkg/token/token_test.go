package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/taskboard/domain"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", "taskboard")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	session := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	signed, err := issuer.Issue(session)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" {
		t.Fatalf("got %+v", claims)
	}
}

func TestIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, _ := NewIssuer("secret", "taskboard")

	expired := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour)}
	signed, _ := issuer.Issue(expired)
	if _, err := issuer.Parse(signed); err == nil {
		t.Fatalf("expired token should fail")
	}

	other, _ := NewIssuer("other-secret", "taskboard")
	valid := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	foreign, _ := other.Issue(valid)
	if _, err := issuer.Parse(foreign); err == nil {
		t.Fatalf("token signed with another secret should fail")
	}

	wrongIssuer, _ := NewIssuer("secret", "someone-else")
	mislabeled, _ := wrongIssuer.Issue(valid)
	if _, err := issuer.Parse(mislabeled); err == nil {
		t.Fatalf("token from another issuer should fail")
	}
}

func TestIssuer_RejectsNoneAlgorithm(t *testing.T) {
	issuer, _ := NewIssuer("secret", "")
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", SessionID: "s1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := issuer.Parse(raw); err == nil {
		t.Fatalf("alg=none must be rejected")
	}
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", "x"); err == nil {
		t.Fatalf("empty secret should fail")
	}
}
