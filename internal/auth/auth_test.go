package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestOpenMissingFile(t *testing.T) {
	kc, err := Open(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if kc.Token() != "" {
		t.Fatalf("Token = %q, want empty", kc.Token())
	}
}

func TestStoreAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "token")
	kc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := kc.Store("  abc123  "); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if kc.Token() != "abc123" {
		t.Fatalf("Token = %q, want trimmed abc123", kc.Token())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file mode = %o, want 600", perm)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Token() != "abc123" {
		t.Fatalf("reopened token = %q", reopened.Token())
	}
}

func TestStoreRejectsEmpty(t *testing.T) {
	kc, _ := Open(filepath.Join(t.TempDir(), "token"))
	if err := kc.Store("   "); err == nil {
		t.Fatal("empty token must be rejected")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	kc, _ := Open(path)
	if err := kc.Store("abc"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := kc.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if kc.Token() != "" {
		t.Fatal("token survived Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("token file survived Clear")
	}
	// Clearing again is fine.
	if err := kc.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	kc := &Keychain{}

	kc.token = signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	if !kc.Expired(now) {
		t.Fatal("token an hour past exp must report expired")
	}

	kc.token = signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if kc.Expired(now) {
		t.Fatal("token with future exp must not report expired")
	}

	// Opaque tokens and tokens without exp defer to the server.
	kc.token = "not-a-jwt"
	if kc.Expired(now) {
		t.Fatal("opaque token must not report expired")
	}
	kc.token = signedToken(t, jwt.RegisteredClaims{Subject: "7"})
	if kc.Expired(now) {
		t.Fatal("jwt without exp must not report expired")
	}
	kc.token = ""
	if kc.Expired(now) {
		t.Fatal("empty token must not report expired")
	}
}

func TestUserID(t *testing.T) {
	kc := &Keychain{}

	kc.token = signedToken(t, jwt.RegisteredClaims{Subject: "42"})
	id, ok := kc.UserID()
	if !ok || id != 42 {
		t.Fatalf("UserID = %d, %v; want 42, true", id, ok)
	}

	kc.token = signedToken(t, jwt.RegisteredClaims{Subject: "ada"})
	if _, ok := kc.UserID(); ok {
		t.Fatal("non-numeric subject must not resolve")
	}
	kc.token = "opaque"
	if _, ok := kc.UserID(); ok {
		t.Fatal("opaque token must not resolve")
	}
}
