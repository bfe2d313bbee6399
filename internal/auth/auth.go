// Package auth handles bearer-credential storage for the board service.
//
// The token is stored as a plain file under the user's config directory
// (the login/token-issuing flow itself lives server-side; Boardwalk only
// keeps what `boardwalk login` was given). When the token is a JWT its
// registered claims are inspected client-side, without verifying the
// signature (only the server can do that), so an expired credential is
// reported before a request is wasted on a guaranteed 401.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenPath = "~/.config/boardwalk/token"

// DefaultTokenPath returns the default credential file path.
func DefaultTokenPath() string {
	return defaultTokenPath
}

// Keychain loads and stores the bearer credential. It implements
// remote.TokenSource.
type Keychain struct {
	path  string
	token string
}

// Open reads the credential at path (default when empty). A missing file
// is not an error; Token simply returns "".
func Open(path string) (*Keychain, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	kc := &Keychain{path: resolved}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return kc, nil
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	kc.token = strings.TrimSpace(string(raw))
	return kc, nil
}

// Token returns the stored bearer credential, or "" when logged out.
func (k *Keychain) Token() string {
	return k.token
}

// Store persists a new credential, creating directories as needed. The
// file is user-readable only.
func (k *Keychain) Store(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(k.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	k.token = token
	return nil
}

// Clear removes the stored credential.
func (k *Keychain) Clear() error {
	k.token = ""
	if err := os.Remove(k.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Expired reports whether the stored token is a JWT whose exp claim has
// passed. Opaque (non-JWT) tokens report false; the server remains the
// authority either way.
func (k *Keychain) Expired(now time.Time) bool {
	if k.token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(k.token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// UserID returns the numeric subject claim of a JWT credential, used as
// the owning user when creating workspaces. ok is false for opaque
// tokens or non-numeric subjects.
func (k *Keychain) UserID() (int64, bool) {
	if k.token == "" {
		return 0, false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(k.token, &claims); err != nil {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultTokenPath
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
