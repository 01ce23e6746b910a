package session

// User is the signed-in account as returned by the auth endpoints.
type User struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the persisted authentication state: a user and the bearer token issued for it.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// LoggedOut returns the sentinel session with neither user nor token.
func LoggedOut() Session {
	return Session{}
}

// IsAuthenticated reports whether both the user and the token are present.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

func (s Session) email() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}
