package state

import (
	"github.com/vaphq/vap/internal/session"
	"github.com/vaphq/vap/internal/vap"
)

// Action is a single state transition handled by Reduce.
type Action interface {
	action()
}

// Slice names the part of the state a request belongs to.
type Slice int

const (
	SliceAuth Slice = iota
	SliceDevelopers
	SliceResumes
)

func (s Slice) String() string {
	switch s {
	case SliceAuth:
		return "auth"
	case SliceDevelopers:
		return "developers"
	case SliceResumes:
		return "resumes"
	default:
		return "unknown"
	}
}

// Session lifecycle.
type (
	Restored         struct{ Session session.Session }
	AuthRequested    struct{}
	AuthSucceeded    struct{ Session session.Session }
	AuthFailed       struct{ Message string }
	SignedOut        struct{}
	AuthErrorCleared struct{}
)

// Canceled ends a request of the slice without recording an error.
type Canceled struct {
	Slice Slice
}

// Developers.
type (
	DevelopersRequested struct{}
	DevelopersLoaded    struct{ Developers []vap.Developer }
	DeveloperAdded      struct{ Developer vap.Developer }
	DeveloperUpdated    struct{ Developer vap.Developer }
	DevelopersFailed    struct{ Message string }

	DevelopersErrorCleared struct{}
	AddDeveloperOpened     struct{}
	AddDeveloperClosed     struct{}
	EditDeveloperOpened    struct{ Developer vap.Developer }
	EditDeveloperClosed    struct{}
)

// Resumes.
type (
	ResumesRequested struct{}
	ResumesLoaded    struct{ Resumes []vap.Resume }
	ResumeGenerated  struct{ Resume vap.Resume }
	ResumesFailed    struct{ Message string }

	ResumesErrorCleared struct{}

	ConversionStarted  struct{ ResumeID string }
	ResumeConverted    struct{ ResumeID, PDFURL string }
	ConversionFailed   struct{ ResumeID, Message string }
	ConversionCanceled struct{ ResumeID string }

	SearchChanged          struct{ Query string }
	DeveloperFilterChanged struct{ DeveloperID string }
	SkillsFilterChanged    struct{ Skills []string }
	FiltersCleared         struct{}
)

// Dialogs.
type (
	SignInOpened struct{}
	SignInClosed struct{}
	SignUpOpened struct{}
	SignUpClosed struct{}
)

func (Restored) action() {}
func (AuthRequested) action() {}
func (AuthSucceeded) action() {}
func (AuthFailed) action() {}
func (SignedOut) action() {}
func (AuthErrorCleared) action() {}
func (Canceled) action() {}

func (DevelopersRequested) action() {}
func (DevelopersLoaded) action() {}
func (DeveloperAdded) action() {}
func (DeveloperUpdated) action() {}
func (DevelopersFailed) action() {}
func (DevelopersErrorCleared) action() {}
func (AddDeveloperOpened) action() {}
func (AddDeveloperClosed) action() {}
func (EditDeveloperOpened) action() {}
func (EditDeveloperClosed) action() {}

func (ResumesRequested) action() {}
func (ResumesLoaded) action() {}
func (ResumeGenerated) action() {}
func (ResumesFailed) action() {}
func (ResumesErrorCleared) action() {}
func (ConversionStarted) action() {}
func (ResumeConverted) action() {}
func (ConversionFailed) action() {}
func (ConversionCanceled) action() {}
func (SearchChanged) action() {}
func (DeveloperFilterChanged) action() {}
func (SkillsFilterChanged) action() {}
func (FiltersCleared) action() {}

func (SignInOpened) action() {}
func (SignInClosed) action() {}
func (SignUpOpened) action() {}
func (SignUpClosed) action() {}
