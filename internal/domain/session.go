package domain

import "time"

// Session is an authenticated user's server-side state. The token is opaque
// and unguessable. Options carries free-form metadata attached after
// creation (permissions, feature flags) without re-authenticating; only the
// core identity fields are replicated into the cache.
type Session struct {
	UserID  int64          `json:"userId"`
	Token   string         `json:"sessionToken"`
	Start   time.Time      `json:"sessionStart"`
	Options map[string]any `json:"-"`
}

// NewSessionToken returns a fresh opaque session token.
func NewSessionToken() string {
	return Token(40)
}

// CacheCopy returns the session as cached: identity fields only, no
// free-form options.
func (s *Session) CacheCopy() *Session {
	return &Session{
		UserID: s.UserID,
		Token:  s.Token,
		Start:  s.Start,
	}
}

// Extend merges options into the session's metadata.
func (s *Session) Extend(options map[string]any) {
	if s.Options == nil {
		s.Options = make(map[string]any, len(options))
	}
	for k, v := range options {
		s.Options[k] = v
	}
}
