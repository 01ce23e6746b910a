// Package state holds the application state of the VAP client: the session lifecycle,
// the cached developer and resume collections, the resume filters and the dialog flags.
//
// State is a plain value. Every change goes through Reduce, which never mutates the
// slices of the state it is given, so a State returned by Store.Snapshot can be read
// without further locking.
package state

import (
	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/session"
	"github.com/vaphq/vap/internal/vap"
)

type AuthStatus int

const (
	LoggedOut AuthStatus = iota
	AuthPending
	LoggedIn
	AuthError
)

func (s AuthStatus) String() string {
	switch s {
	case LoggedOut:
		return "logged out"
	case AuthPending:
		return "pending"
	case LoggedIn:
		return "logged in"
	case AuthError:
		return "error"
	default:
		return "unknown"
	}
}

type Auth struct {
	Status AuthStatus
	User   *session.User
	Token  string
	Error  string
}

func (a Auth) IsAuthenticated() bool {
	return a.User != nil && a.Token != ""
}

func (a Auth) IsLoading() bool {
	return a.Status == AuthPending
}

// Session returns the in-memory copy of the session.
func (a Auth) Session() session.Session {
	return session.Session{User: a.User, Token: a.Token}
}

type Developers struct {
	Items     []vap.Developer
	IsLoading bool
	Error     string

	IsAddDialogOpen  bool
	IsEditDialogOpen bool
	Editing          *vap.Developer
}

type Resumes struct {
	Items []vap.Resume
	// Filtered is Items with Filters applied. It is recomputed whenever either changes.
	Filtered  []vap.Resume
	IsLoading bool
	Error     string
	Filters   filtering.Spec
	// FilterSteps reports each enabled filter of the last recompute.
	FilterSteps []filtering.Step

	// Converting lists the ids of resumes with a PDF conversion in flight.
	Converting []string
}

// IsConverting reports whether a PDF conversion of the resume is in flight.
func (r Resumes) IsConverting(id string) bool {
	for _, c := range r.Converting {
		if c == id {
			return true
		}
	}
	return false
}

type UI struct {
	IsSignInDialogOpen bool
	IsSignUpDialogOpen bool
}

type State struct {
	Auth       Auth
	Developers Developers
	Resumes    Resumes
	UI         UI
}

// Initial returns the state of a freshly started client, before the session is restored.
func Initial() State {
	return State{
		Developers: Developers{Items: []vap.Developer{}},
		Resumes: Resumes{
			Items:    []vap.Resume{},
			Filtered: []vap.Resume{},
		},
	}
}
