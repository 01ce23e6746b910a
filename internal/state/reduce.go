package state

import (
	"slices"

	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/vap"
)

// Reduce returns the state that results from applying action to s.
// Slices of s are never written to; a changed collection is always a new slice.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case Restored, AuthRequested, AuthSucceeded, AuthFailed, SignedOut, AuthErrorCleared:
		return reduceAuth(s, a)

	case Canceled:
		switch a.Slice {
		case SliceAuth:
			s.Auth.Status = settledStatus(s.Auth)
		case SliceDevelopers:
			s.Developers.IsLoading = false
		case SliceResumes:
			s.Resumes.IsLoading = false
		}
		return s

	case DevelopersRequested, DevelopersLoaded, DeveloperAdded, DeveloperUpdated, DevelopersFailed,
		DevelopersErrorCleared, AddDeveloperOpened, AddDeveloperClosed, EditDeveloperOpened, EditDeveloperClosed:
		s.Developers = reduceDevelopers(s.Developers, a)
		return s

	case ResumesRequested, ResumesLoaded, ResumeGenerated, ResumesFailed, ResumesErrorCleared,
		ConversionStarted, ResumeConverted, ConversionFailed, ConversionCanceled,
		SearchChanged, DeveloperFilterChanged, SkillsFilterChanged, FiltersCleared:
		s.Resumes = reduceResumes(s.Resumes, a)
		return s

	case SignInOpened:
		s.UI.IsSignInDialogOpen = true
		s.UI.IsSignUpDialogOpen = false
	case SignInClosed:
		s.UI.IsSignInDialogOpen = false
	case SignUpOpened:
		s.UI.IsSignUpDialogOpen = true
		s.UI.IsSignInDialogOpen = false
	case SignUpClosed:
		s.UI.IsSignUpDialogOpen = false
	}

	return s
}

func reduceAuth(s State, action Action) State {
	switch a := action.(type) {
	case Restored:
		s.Auth = Auth{Status: LoggedOut}
		if a.Session.IsAuthenticated() {
			s.Auth = Auth{Status: LoggedIn, User: a.Session.User, Token: a.Session.Token}
		}

	case AuthRequested:
		s.Auth.Status = AuthPending
		s.Auth.Error = ""

	case AuthSucceeded:
		s.Auth = Auth{Status: LoggedIn, User: a.Session.User, Token: a.Session.Token}
		s.UI.IsSignInDialogOpen = false
		s.UI.IsSignUpDialogOpen = false

	case AuthFailed:
		// user and token keep their previous values
		s.Auth.Status = AuthError
		s.Auth.Error = a.Message

	case SignedOut:
		s.Auth = Auth{Status: LoggedOut}

	case AuthErrorCleared:
		s.Auth.Error = ""
		if s.Auth.Status == AuthError {
			s.Auth.Status = settledStatus(s.Auth)
		}
	}

	return s
}

// settledStatus is the status of an auth slice with no request in flight and no error.
func settledStatus(a Auth) AuthStatus {
	if a.IsAuthenticated() {
		return LoggedIn
	}
	return LoggedOut
}

func reduceDevelopers(d Developers, action Action) Developers {
	switch a := action.(type) {
	case DevelopersRequested:
		d.IsLoading = true
		d.Error = ""

	case DevelopersLoaded:
		d.IsLoading = false
		d.Error = ""
		d.Items = slices.Clone(a.Developers)
		if d.Items == nil {
			d.Items = []vap.Developer{}
		}

	case DeveloperAdded:
		d.IsLoading = false
		d.Error = ""
		d.Items = append(slices.Clip(d.Items), a.Developer)
		d.IsAddDialogOpen = false

	case DeveloperUpdated:
		d.IsLoading = false
		d.Error = ""
		if i := slices.IndexFunc(d.Items, func(dev vap.Developer) bool { return dev.ID == a.Developer.ID }); i >= 0 {
			items := slices.Clone(d.Items)
			items[i] = a.Developer
			d.Items = items
		}
		d.IsEditDialogOpen = false
		d.Editing = nil

	case DevelopersFailed:
		d.IsLoading = false
		d.Error = a.Message

	case DevelopersErrorCleared:
		d.Error = ""

	case AddDeveloperOpened:
		d.IsAddDialogOpen = true
		d.Error = ""

	case AddDeveloperClosed:
		d.IsAddDialogOpen = false
		d.Error = ""

	case EditDeveloperOpened:
		dev := a.Developer
		d.IsEditDialogOpen = true
		d.Editing = &dev
		d.Error = ""

	case EditDeveloperClosed:
		d.IsEditDialogOpen = false
		d.Editing = nil
		d.Error = ""
	}

	return d
}

func reduceResumes(r Resumes, action Action) Resumes {
	switch a := action.(type) {
	case ResumesRequested:
		r.IsLoading = true
		r.Error = ""

	case ResumesLoaded:
		r.IsLoading = false
		r.Error = ""
		r.Items = slices.Clone(a.Resumes)
		if r.Items == nil {
			r.Items = []vap.Resume{}
		}
		r = refilter(r)

	case ResumeGenerated:
		r.IsLoading = false
		r.Error = ""
		r.Items = append([]vap.Resume{a.Resume}, r.Items...)
		r = refilter(r)

	case ResumesFailed:
		r.IsLoading = false
		r.Error = a.Message

	case ResumesErrorCleared:
		r.Error = ""

	case ConversionStarted:
		if !r.IsConverting(a.ResumeID) {
			r.Converting = append(slices.Clip(r.Converting), a.ResumeID)
		}
		r.Error = ""

	case ResumeConverted:
		r.Converting = withoutID(r.Converting, a.ResumeID)
		r.Items = withPDF(r.Items, a.ResumeID, a.PDFURL)
		r.Filtered = withPDF(r.Filtered, a.ResumeID, a.PDFURL)

	case ConversionFailed:
		r.Converting = withoutID(r.Converting, a.ResumeID)
		r.Error = a.Message

	case ConversionCanceled:
		r.Converting = withoutID(r.Converting, a.ResumeID)

	case SearchChanged:
		r.Filters.Search = a.Query
		r = refilter(r)

	case DeveloperFilterChanged:
		r.Filters.DeveloperID = a.DeveloperID
		r = refilter(r)

	case SkillsFilterChanged:
		r.Filters.Skills = slices.Clone(a.Skills)
		r = refilter(r)

	case FiltersCleared:
		r.Filters = filtering.Spec{}
		r = refilter(r)
	}

	return r
}

// refilter recomputes the filtered view and records what each enabled filter dropped.
func refilter(r Resumes) Resumes {
	r.Filtered, r.FilterSteps = filtering.Run(filtering.Steps(r.Filters), r.Items, nil)
	return r
}

func withPDF(resumes []vap.Resume, id, pdfURL string) []vap.Resume {
	i := slices.IndexFunc(resumes, func(r vap.Resume) bool { return r.ID == id })
	if i < 0 {
		return resumes
	}

	out := slices.Clone(resumes)
	out[i].PDFURL = pdfURL
	return out
}

func withoutID(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(c string) bool { return c == id })
}
