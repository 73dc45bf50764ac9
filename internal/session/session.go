package session

import (
	"encoding/json"
	"sync"

	"github.com/nhle/projecthub/internal/model"
)

const (
	tokenKey    = "api-token"
	identityKey = "identity"
)

// Session holds the current authentication credential and identity.
// It gates access to protected views and supplies the token attached
// to every outgoing request. A single instance is created at startup
// and shared by reference.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *model.User
}

// New creates an unauthenticated session.
func New() *Session {
	return &Session{}
}

// Restore attempts to load a previously saved credential from the
// system keyring. It returns true when a token was found; whether the
// token is still accepted is discovered on the first request.
func (s *Session) Restore() bool {
	token, err := getCredential(tokenKey)
	if err != nil || token == "" {
		return false
	}

	var user *model.User
	if raw, err := getCredential(identityKey); err == nil && raw != "" {
		var u model.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return true
}

// SignIn stores the issued token and identity, persisting them so a
// restart stays signed in.
func (s *Session) SignIn(token string, user model.User) {
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	// Persistence is best-effort; a keyring failure only costs the
	// user a login on next start.
	_ = setCredential(tokenKey, token)
	if raw, err := json.Marshal(user); err == nil {
		_ = setCredential(identityKey, string(raw))
	}
}

// SignOut discards the session and removes the persisted credential.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	_ = deleteCredential(tokenKey)
	_ = deleteCredential(identityKey)
}

// Invalidate is SignOut for the 401 path: the server has already
// rejected the credential, so keeping it would loop.
func (s *Session) Invalidate() {
	s.SignOut()
}

// Token returns the current credential, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current identity, nil when unknown.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a credential is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}
