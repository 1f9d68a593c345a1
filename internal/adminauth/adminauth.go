// Package adminauth authenticates the single table-operator credential
// used by the debug/admin action (the debug_set_chips chip override). It
// is deliberately not a multi-account system: persistent player accounts
// and OAuth-style login are an external collaborator per the table's
// design, not something this process owns.
package adminauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 12 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidCredentials = errors.New("invalid operator credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Authenticator holds the bcrypt hash of the one operator password and
// every bearer token currently authorized to issue admin actions.
type Authenticator struct {
	mu           sync.Mutex
	passwordHash []byte
	sessionTTL   time.Duration
	tokens       map[string]time.Time // token -> expiry
}

// New hashes password once at startup. An empty password disables admin
// login entirely (Login always fails), which is the safe default when no
// operator credential was configured.
func New(password string) (*Authenticator, error) {
	a := &Authenticator{
		sessionTTL: defaultSessionTTL,
		tokens:     make(map[string]time.Time),
	}
	if password == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a.passwordHash = hash
	return a, nil
}

// Login validates the operator password and issues a bearer token.
func (a *Authenticator) Login(password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.passwordHash) == 0 {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	token := mustToken()
	a.tokens[token] = time.Now().Add(a.sessionTTL)
	return token, nil
}

// Authenticate reports whether token is a live, unexpired bearer token,
// sliding its expiry forward on every successful use.
func (a *Authenticator) Authenticate(token string) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.tokens[token]
	if !ok {
		return false
	}
	now := time.Now()
	if now.After(expiry) {
		delete(a.tokens, token)
		return false
	}
	a.tokens[token] = now.Add(a.sessionTTL)
	return true
}

func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tokens, token)
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
