package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/session"
	"github.com/vaphq/vap/internal/vap"
)

func strPtr(s string) *string { return &s }

func sampleResumes() []vap.Resume {
	return []vap.Resume{
		{ID: "r1", Title: "Backend Eng", ResumeURL: "/out/r1", Skills: strPtr("Go, Kubernetes"), Developer: vap.DeveloperSummary{ID: "d1", Name: "Alice"}},
		{ID: "r2", Title: "Frontend Eng", ResumeURL: "/out/r2", Skills: strPtr("React"), Developer: vap.DeveloperSummary{ID: "d2", Name: "Bob"}},
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	base := Reduce(Initial(), DevelopersLoaded{Developers: []vap.Developer{{ID: "d1", Name: "Alice"}}})
	base = Reduce(base, ResumesLoaded{Resumes: sampleResumes()})

	before := base.Developers.Items[0]
	resumeBefore := base.Resumes.Items[0]

	_ = Reduce(base, DeveloperUpdated{Developer: vap.Developer{ID: "d1", Name: "Alicia"}})
	_ = Reduce(base, DeveloperAdded{Developer: vap.Developer{ID: "d2", Name: "Bob"}})
	_ = Reduce(base, ResumeConverted{ResumeID: "r1", PDFURL: "/out/r1.pdf"})
	_ = Reduce(base, ResumeGenerated{Resume: vap.Resume{ID: "r0", ResumeURL: "/out/r0"}})

	assert.Equal(t, before, base.Developers.Items[0])
	assert.Len(t, base.Developers.Items, 1)
	assert.Equal(t, resumeBefore, base.Resumes.Items[0])
	assert.Empty(t, base.Resumes.Items[0].PDFURL)
	assert.Len(t, base.Resumes.Items, 2)
}

func TestReduceAuthLifecycle(t *testing.T) {
	user := &session.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}

	s := Reduce(Initial(), SignInOpened{})
	s = Reduce(s, AuthRequested{})
	assert.Equal(t, AuthPending, s.Auth.Status)
	assert.True(t, s.Auth.IsLoading())

	s = Reduce(s, AuthFailed{Message: "Invalid credentials"})
	assert.Equal(t, AuthError, s.Auth.Status)
	assert.Equal(t, "Invalid credentials", s.Auth.Error)
	assert.True(t, s.UI.IsSignInDialogOpen, "the dialog stays open for a retry")

	s = Reduce(s, AuthRequested{})
	assert.Empty(t, s.Auth.Error)

	s = Reduce(s, AuthSucceeded{Session: session.Session{User: user, Token: "tok"}})
	assert.Equal(t, LoggedIn, s.Auth.Status)
	assert.True(t, s.Auth.IsAuthenticated())
	assert.False(t, s.UI.IsSignInDialogOpen)

	s = Reduce(s, SignedOut{})
	assert.Equal(t, Auth{Status: LoggedOut}, s.Auth)
}

func TestReduceClearError(t *testing.T) {
	s := Reduce(Initial(), AuthFailed{Message: "boom"})

	s = Reduce(s, AuthErrorCleared{})
	assert.Equal(t, LoggedOut, s.Auth.Status)
	assert.Empty(t, s.Auth.Error)

	again := Reduce(s, AuthErrorCleared{})
	assert.Equal(t, s, again)

	loggedIn := Reduce(Initial(), AuthSucceeded{Session: session.Session{User: &session.User{ID: "u1"}, Token: "tok"}})
	failed := Reduce(loggedIn, AuthFailed{Message: "Sign in failed"})
	assert.Equal(t, "tok", failed.Auth.Token, "a failed attempt leaves the session unchanged")
	assert.Equal(t, LoggedIn, Reduce(failed, AuthErrorCleared{}).Auth.Status)
}

func TestReduceCanceled(t *testing.T) {
	s := Reduce(Initial(), AuthRequested{})
	s = Reduce(s, DevelopersRequested{})
	s = Reduce(s, ResumesRequested{})

	s = Reduce(s, Canceled{Slice: SliceAuth})
	s = Reduce(s, Canceled{Slice: SliceDevelopers})
	s = Reduce(s, Canceled{Slice: SliceResumes})

	assert.Equal(t, LoggedOut, s.Auth.Status)
	assert.Empty(t, s.Auth.Error)
	assert.False(t, s.Developers.IsLoading)
	assert.Empty(t, s.Developers.Error)
	assert.False(t, s.Resumes.IsLoading)
	assert.Empty(t, s.Resumes.Error)
}

func TestReduceDialogs(t *testing.T) {
	s := Reduce(Initial(), SignInOpened{})
	s = Reduce(s, SignUpOpened{})
	assert.False(t, s.UI.IsSignInDialogOpen)
	assert.True(t, s.UI.IsSignUpDialogOpen)

	s = Reduce(s, SignInOpened{})
	assert.True(t, s.UI.IsSignInDialogOpen)
	assert.False(t, s.UI.IsSignUpDialogOpen)

	s = Reduce(s, SignInClosed{})
	assert.Equal(t, UI{}, s.UI)

	dev := vap.Developer{ID: "d1", Name: "Alice"}
	s = Reduce(s, DevelopersFailed{Message: "boom"})
	s = Reduce(s, EditDeveloperOpened{Developer: dev})
	assert.True(t, s.Developers.IsEditDialogOpen)
	require.NotNil(t, s.Developers.Editing)
	assert.Equal(t, dev, *s.Developers.Editing)
	assert.Empty(t, s.Developers.Error)

	s = Reduce(s, EditDeveloperClosed{})
	assert.False(t, s.Developers.IsEditDialogOpen)
	assert.Nil(t, s.Developers.Editing)

	s = Reduce(s, AddDeveloperOpened{})
	assert.True(t, s.Developers.IsAddDialogOpen)
	s = Reduce(s, AddDeveloperClosed{})
	assert.False(t, s.Developers.IsAddDialogOpen)
}

func TestReduceUpdateDeveloper(t *testing.T) {
	s := Reduce(Initial(), DevelopersLoaded{Developers: []vap.Developer{
		{ID: "d1", Name: "Alice"},
		{ID: "d2", Name: "Bob"},
	}})
	s = Reduce(s, EditDeveloperOpened{Developer: s.Developers.Items[1]})

	updated := Reduce(s, DeveloperUpdated{Developer: vap.Developer{ID: "d2", Name: "Robert", Link: "/files/bob.pdf"}})
	assert.Equal(t, []vap.Developer{{ID: "d1", Name: "Alice"}, {ID: "d2", Name: "Robert", Link: "/files/bob.pdf"}}, updated.Developers.Items)
	assert.False(t, updated.Developers.IsEditDialogOpen)
	assert.Nil(t, updated.Developers.Editing)

	missing := Reduce(s, DeveloperUpdated{Developer: vap.Developer{ID: "d7", Name: "Ghost"}})
	assert.Equal(t, s.Developers.Items, missing.Developers.Items)
}

func TestReduceFilters(t *testing.T) {
	s := Reduce(Initial(), ResumesLoaded{Resumes: sampleResumes()})
	assert.Equal(t, s.Resumes.Items, s.Resumes.Filtered)

	s = Reduce(s, SearchChanged{Query: "eng"})
	assert.Len(t, s.Resumes.Filtered, 2)

	s = Reduce(s, SkillsFilterChanged{Skills: []string{"go"}})
	require.Len(t, s.Resumes.Filtered, 1)
	assert.Equal(t, "r1", s.Resumes.Filtered[0].ID)

	s = Reduce(s, DeveloperFilterChanged{DeveloperID: "d2"})
	assert.Empty(t, s.Resumes.Filtered)

	s = Reduce(s, FiltersCleared{})
	assert.True(t, s.Resumes.Filters.IsEmpty())
	assert.Equal(t, s.Resumes.Items, s.Resumes.Filtered)
}

func TestReduceGeneratedResumeIsPrependedAndFiltered(t *testing.T) {
	s := Reduce(Initial(), ResumesLoaded{Resumes: sampleResumes()})
	s = Reduce(s, DeveloperFilterChanged{DeveloperID: "d1"})
	s = Reduce(s, ResumesRequested{})

	generated := vap.Resume{ID: "r3", Title: "Platform Eng", ResumeURL: "/out/r3", Developer: vap.DeveloperSummary{ID: "d1", Name: "Alice"}}
	s = Reduce(s, ResumeGenerated{Resume: generated})

	assert.False(t, s.Resumes.IsLoading)
	assert.Equal(t, "r3", s.Resumes.Items[0].ID)
	assert.Len(t, s.Resumes.Items, 3)
	assert.Equal(t, filtering.Apply(s.Resumes.Items, s.Resumes.Filters), s.Resumes.Filtered)
	assert.Equal(t, "r3", s.Resumes.Filtered[0].ID)
}

func TestReduceConversion(t *testing.T) {
	s := Reduce(Initial(), ResumesLoaded{Resumes: sampleResumes()})
	s = Reduce(s, ConversionStarted{ResumeID: "r2"})
	s = Reduce(s, ConversionStarted{ResumeID: "r2"})
	assert.Equal(t, []string{"r2"}, s.Resumes.Converting)
	assert.True(t, s.Resumes.IsConverting("r2"))

	s = Reduce(s, ResumeConverted{ResumeID: "r2", PDFURL: "/out/r2.pdf"})
	assert.Empty(t, s.Resumes.Converting)
	assert.Equal(t, "/out/r2.pdf", s.Resumes.Items[1].PDFURL)
	assert.Equal(t, "/out/r2.pdf", s.Resumes.Filtered[1].PDFURL)

	s = Reduce(s, ConversionStarted{ResumeID: "r1"})
	failed := Reduce(s, ConversionFailed{ResumeID: "r1", Message: "Conversion failed"})
	assert.Empty(t, failed.Resumes.Converting)
	assert.Equal(t, "Conversion failed", failed.Resumes.Error)

	canceled := Reduce(s, ConversionCanceled{ResumeID: "r1"})
	assert.Empty(t, canceled.Resumes.Converting)
	assert.Empty(t, canceled.Resumes.Error)
}

func TestReduceRestored(t *testing.T) {
	s := Reduce(Initial(), Restored{Session: session.LoggedOut()})
	assert.Equal(t, LoggedOut, s.Auth.Status)

	user := &session.User{ID: "u1"}
	s = Reduce(s, Restored{Session: session.Session{User: user, Token: "tok"}})
	assert.Equal(t, Auth{Status: LoggedIn, User: user, Token: "tok"}, s.Auth)
}
