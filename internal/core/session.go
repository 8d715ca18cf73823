package core

import "time"

// Session identifies an authenticated user together with the expiry of their
// credentials. It is passed explicitly into every call that needs an owner,
// never read from ambient state.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at the given time.
// A session with no expiry set is treated as expired.
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.After(s.ExpiresAt)
}
