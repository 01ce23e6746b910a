package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/session"
	"github.com/vaphq/vap/internal/tasks"
	"github.com/vaphq/vap/internal/vap"
)

// SessionStore persists the session between runs.
type SessionStore interface {
	Save(session.Session)
	Clear()
	Validate() session.Session
}

// API is the part of the backend client the store drives.
type API interface {
	Login(ctx context.Context, email, password string) (*vap.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*vap.AuthResult, error)
	ListDevelopers(ctx context.Context) ([]vap.Developer, error)
	CreateDeveloper(ctx context.Context, name string, doc *vap.Upload) (*vap.Developer, error)
	UpdateDeveloper(ctx context.Context, id, name string, doc *vap.Upload) (*vap.Developer, error)
	ListResumes(ctx context.Context) ([]vap.Resume, error)
	GenerateResume(ctx context.Context, req vap.GenerateRequest) (*vap.Resume, error)
	ConvertToPDF(ctx context.Context, resumeID string) (string, error)
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// Store owns the application state and runs the request cycles that change it.
//
// Auth, developer list and resume list requests supersede each other: starting one
// cancels the previous request of the same slice, and the result of a superseded
// request is dropped.
type Store struct {
	logger  *zap.Logger
	session SessionStore
	api     API

	mu       sync.Mutex
	state    State
	seq      uint64
	inflight map[Slice]inflight
}

func NewStore(sessions SessionStore, api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		logger:   logger,
		session:  sessions,
		api:      api,
		state:    Initial(),
		inflight: make(map[Slice]inflight),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action to the current state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(action)
}

func (s *Store) apply(action Action) State {
	s.state = Reduce(s.state, action)
	s.logger.Debug("state transition", zap.String("action", fmt.Sprintf("%T", action)))

	switch action.(type) {
	case ResumesLoaded, ResumeGenerated, SearchChanged, DeveloperFilterChanged, SkillsFilterChanged, FiltersCleared:
		filtering.LogSteps(s.logger, s.state.Resumes.FilterSteps)
	}

	return s.state
}

// begin registers a superseding request of slice and dispatches its start action.
func (s *Store) begin(ctx context.Context, slice Slice, start Action) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[slice]; ok {
		s.logger.Debug("superseding request", zap.Stringer("slice", slice), zap.Uint64("generation", prev.gen))
		prev.cancel()
	}

	s.seq++
	s.inflight[slice] = inflight{gen: s.seq, cancel: cancel}
	s.apply(start)

	return ctx, s.seq
}

// finish applies the outcome of request gen of slice when it is still the latest one.
// commit runs under the store lock before the action is applied.
func (s *Store) finish(slice Slice, gen uint64, outcome Action, commit func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.inflight[slice]
	if !ok || current.gen != gen {
		s.logger.Debug("dropping stale response", zap.Stringer("slice", slice), zap.Uint64("generation", gen))
		return false
	}

	current.cancel()
	delete(s.inflight, slice)

	if commit != nil {
		commit()
	}
	s.apply(outcome)

	return true
}

func (s *Store) abandon(slice Slice) {
	if prev, ok := s.inflight[slice]; ok {
		prev.cancel()
		delete(s.inflight, slice)
	}
}

// Restore loads the persisted session and validates it.
func (s *Store) Restore() State {
	restored := s.session.Validate()

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.apply(Restored{Session: restored})
	s.logger.Info("session restored", zap.Stringer("status", state.Auth.Status))
	return state
}

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "sign in", func(ctx context.Context) (*vap.AuthResult, error) {
		return s.api.Login(ctx, email, password)
	})
}

func (s *Store) SignUp(ctx context.Context, name, email, password string) error {
	return s.authenticate(ctx, "sign up", func(ctx context.Context) (*vap.AuthResult, error) {
		return s.api.Register(ctx, name, email, password)
	})
}

func (s *Store) authenticate(ctx context.Context, op string, call func(context.Context) (*vap.AuthResult, error)) error {
	ctx, gen := s.begin(ctx, SliceAuth, AuthRequested{})

	result, err := call(ctx)
	if err != nil {
		if vap.IsCanceled(err) {
			s.finish(SliceAuth, gen, Canceled{Slice: SliceAuth}, nil)
			return err
		}

		message := vap.Message(err, "Authentication failed")
		if s.finish(SliceAuth, gen, AuthFailed{Message: message}, nil) {
			s.logger.Warn(op+" failed", zap.Error(err))
		}
		return err
	}

	sess := result.Session()
	applied := s.finish(SliceAuth, gen, AuthSucceeded{Session: sess}, func() {
		s.session.Save(sess)
	})
	if !applied {
		return fmt.Errorf("%s: %w", op, context.Canceled)
	}

	s.logger.Info(op+" succeeded", zap.String("user_id", sess.User.ID))
	return nil
}

// SignOut clears the session from memory and storage. A pending sign in or sign up is cancelled.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abandon(SliceAuth)
	s.session.Clear()
	s.apply(SignedOut{})
}

func (s *Store) ClearError() {
	s.Dispatch(AuthErrorCleared{})
}

func (s *Store) FetchDevelopers(ctx context.Context) error {
	ctx, gen := s.begin(ctx, SliceDevelopers, DevelopersRequested{})

	developers, err := s.api.ListDevelopers(ctx)
	if err != nil {
		s.finish(SliceDevelopers, gen, s.failure(SliceDevelopers, err, "Failed to fetch developers"), nil)
		return err
	}

	s.finish(SliceDevelopers, gen, DevelopersLoaded{Developers: developers}, nil)
	return nil
}

func (s *Store) AddDeveloper(ctx context.Context, name string, doc *vap.Upload) (*vap.Developer, error) {
	s.Dispatch(DevelopersRequested{})

	developer, err := s.api.CreateDeveloper(ctx, name, doc)
	if err != nil {
		s.Dispatch(s.failure(SliceDevelopers, err, "Failed to add developer"))
		return nil, err
	}

	s.Dispatch(DeveloperAdded{Developer: *developer})
	return developer, nil
}

// UpdateDeveloper renames the developer and replaces its document when doc is not nil.
func (s *Store) UpdateDeveloper(ctx context.Context, id, name string, doc *vap.Upload) (*vap.Developer, error) {
	s.Dispatch(DevelopersRequested{})

	developer, err := s.api.UpdateDeveloper(ctx, id, name, doc)
	if err != nil {
		s.Dispatch(s.failure(SliceDevelopers, err, "Failed to update developer"))
		return nil, err
	}

	s.Dispatch(DeveloperUpdated{Developer: *developer})
	return developer, nil
}

func (s *Store) FetchResumes(ctx context.Context) error {
	ctx, gen := s.begin(ctx, SliceResumes, ResumesRequested{})

	resumes, err := s.api.ListResumes(ctx)
	if err != nil {
		s.finish(SliceResumes, gen, s.failure(SliceResumes, err, "Failed to fetch resumes"), nil)
		return err
	}

	s.finish(SliceResumes, gen, ResumesLoaded{Resumes: resumes}, nil)
	return nil
}

func (s *Store) GenerateResume(ctx context.Context, req vap.GenerateRequest) (*vap.Resume, error) {
	s.Dispatch(ResumesRequested{})

	resume, err := s.api.GenerateResume(ctx, req)
	if err != nil {
		s.Dispatch(s.failure(SliceResumes, err, "Failed to generate resume"))
		return nil, err
	}

	s.Dispatch(ResumeGenerated{Resume: *resume})
	return resume, nil
}

// ConvertToPDF requests a PDF rendition of the resume and records its URL.
func (s *Store) ConvertToPDF(ctx context.Context, resumeID string) (string, error) {
	s.Dispatch(ConversionStarted{ResumeID: resumeID})

	pdfURL, err := s.api.ConvertToPDF(ctx, resumeID)
	if err != nil {
		if vap.IsCanceled(err) {
			s.Dispatch(ConversionCanceled{ResumeID: resumeID})
			return "", err
		}
		s.Dispatch(ConversionFailed{ResumeID: resumeID, Message: vap.Message(err, "Failed to convert resume to PDF")})
		return "", err
	}

	s.Dispatch(ResumeConverted{ResumeID: resumeID, PDFURL: pdfURL})
	return pdfURL, nil
}

// Refresh reloads developers and resumes concurrently. Each slice records its own failure.
func (s *Store) Refresh(ctx context.Context) error {
	return tasks.All(ctx, s.FetchDevelopers, s.FetchResumes)
}

func (s *Store) failure(slice Slice, err error, fallback string) Action {
	if vap.IsCanceled(err) {
		return Canceled{Slice: slice}
	}

	message := vap.Message(err, fallback)
	s.logger.Warn("request failed", zap.Stringer("slice", slice), zap.String("message", message), zap.Error(err))

	switch slice {
	case SliceDevelopers:
		return DevelopersFailed{Message: message}
	case SliceResumes:
		return ResumesFailed{Message: message}
	default:
		return AuthFailed{Message: message}
	}
}
