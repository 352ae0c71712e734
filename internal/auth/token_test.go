package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/querydesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.GenerateToken("alice", domain.RoleSupport)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	sess, err := tm.ParseToken(token.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if sess.Username != "alice" || sess.Role != domain.RoleSupport || sess.TokenID != token.ID {
		t.Errorf("session = %+v", sess)
	}
	if !sess.ExpiresAt.Equal(token.ExpiresAt.Truncate(time.Second)) {
		t.Errorf("expiry = %v, want %v", sess.ExpiresAt, token.ExpiresAt)
	}
}

func TestTokenRejections(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return issued }
	token, err := tm.GenerateToken("alice", domain.RoleClient)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("other-secret", time.Minute)
	other.now = tm.now
	if _, err := other.ParseToken(token.Value); err == nil {
		t.Error("token signed with another secret accepted")
	}

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tm.ParseToken(token.Value); err == nil {
		t.Error("expired token accepted")
	}

	tm.now = func() time.Time { return issued }
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: domain.RoleSupport,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Minute)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tm.ParseToken(raw); err == nil {
		t.Error("unsigned token accepted")
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "y",
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseToken(forged); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw" {
		t.Fatal("password stored in clear")
	}
	if err := ComparePassword(hash, "pw"); err != nil {
		t.Errorf("matching password rejected: %v", err)
	}
	if err := ComparePassword(hash, "PW"); err == nil {
		t.Error("wrong password accepted")
	}

	again, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if again == hash {
		t.Error("digests should be salted")
	}
}

func TestPasswordHashingLongPasswords(t *testing.T) {
	base := strings.Repeat("p", 72)
	for _, plain := range []string{base + "q", strings.Repeat("x", 200)} {
		hash, err := HashPassword(plain, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword(%d bytes): %v", len(plain), err)
		}
		if err := ComparePassword(hash, plain); err != nil {
			t.Errorf("%d byte password rejected: %v", len(plain), err)
		}
	}

	// Bytes past 72 still count.
	hash, err := HashPassword(base+"q", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, base+"r"); err == nil {
		t.Error("password differing after byte 72 accepted")
	}
}
