package domain

// SessionState is the authentication state of the client. Authenticated is true if and only if User is not nil.
type SessionState struct {
	Authenticated bool  `json:"isAuthenticated"`
	User          *User `json:"user"`
}

// Anonymous is the state of a client nobody is logged into.
var Anonymous = SessionState{}

// Valid reports whether the state satisfies the authenticated/user invariant.
func (s SessionState) Valid() bool {
	return s.Authenticated == (s.User != nil)
}
