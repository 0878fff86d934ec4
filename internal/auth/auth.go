package auth

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strings"
)

// Authenticator checks inbound requests against the single shared bearer
// token the ApplicationSet controller is configured with. The token is
// loaded once at startup and never changes for the life of the process.
type Authenticator struct {
	expected string
}

func NewAuthenticator(token string) *Authenticator {
	return &Authenticator{expected: "Bearer " + token}
}

// Verify compares the Authorization header against the expected bearer
// value. Absent, malformed and mismatched headers all fail the same way.
// The comparison is constant-time to avoid leaking the token by timing.
func (a *Authenticator) Verify(header string) error {
	if header == "" {
		return fmt.Errorf("missing Authorization header")
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(a.expected)) != 1 {
		return fmt.Errorf("invalid bearer token")
	}
	return nil
}

// LoadToken reads the plugin token from the secret file mounted into the
// pod. Surrounding whitespace (trailing newlines from kubectl create
// secret, typically) is stripped.
func LoadToken(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read plugin token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("plugin token file %s is empty", path)
	}
	return token, nil
}
