package nntp

// AuthState tracks where a session sits in the AUTHINFO USER/PASS exchange.
type AuthState int

const (
	// AuthNone is the initial state: no AUTHINFO USER has been sent, or the
	// backend doesn't require authentication at all.
	AuthNone AuthState = iota
	// AuthUserPending means AUTHINFO USER was accepted and the backend is
	// now waiting on AUTHINFO PASS.
	AuthUserPending
	// AuthAuthenticated means AUTHINFO PASS succeeded.
	AuthAuthenticated
)

// Session holds the per-connection state a dispatcher mutates as it
// processes commands: the auth handshake position, the currently selected
// group and article pointer, and the pending AUTHINFO USER username.
type Session struct {
	AuthState AuthState
	Username  string

	Group          *Group
	CurrentArticle int64 // 0 means "no current article"

	// Authenticated carries whatever value Backend.AuthInfo returned,
	// for backends that want to stash a user record alongside the session.
	Authenticated interface{}
}

// NewSession returns a Session in its initial, unauthenticated,
// no-group-selected state.
func NewSession() *Session {
	return &Session{AuthState: AuthNone}
}

// HasGroupSelected reports whether a GROUP or LISTGROUP has put the session
// in a newsgroup, as required by commands like STAT without an argument.
func (s *Session) HasGroupSelected() bool {
	return s.Group != nil
}

// HasCurrentArticle reports whether a current-article pointer is set within
// the selected group.
func (s *Session) HasCurrentArticle() bool {
	return s.Group != nil && s.CurrentArticle != 0
}

// SelectGroup sets the current group and resets the current-article pointer
// to the group's low watermark, or to 0 if the group is empty (Low > High).
func (s *Session) SelectGroup(g *Group) {
	s.Group = g
	if g != nil && g.Low <= g.High {
		s.CurrentArticle = g.Low
	} else {
		s.CurrentArticle = 0
	}
}
