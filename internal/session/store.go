package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// StorageKey names the single persisted session record.
	StorageKey = "vap_auth"

	dirPerm  = 0o700
	filePerm = 0o600
)

// Store persists one Session record as JSON on a filesystem.
// Every failure of the underlying storage degrades to "logged out"; nothing is returned to the caller.
type Store struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
	now    func() time.Time

	// mu serialises writers. The last Save wins.
	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store keeping the record at path on fs.
func New(fs afero.Fs, path string, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		fs:     fs,
		path:   path,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultPath returns the record location under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "vap", StorageKey+".json"), nil
}

func (s *Store) Path() string { return s.path }

// Save overwrites the stored record with session.
func (s *Store) Save(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(session); err != nil {
		s.logger.Error("failed to save session", zap.String("path", s.path), zap.Error(err))
		// A stale record must not outlive a failed write.
		if rmErr := s.remove(); rmErr != nil {
			s.logger.Debug("failed to remove stale session", zap.Error(rmErr))
		}
		return
	}

	s.logger.Debug("session saved",
		zap.String("user", session.email()),
		zap.Bool("has_token", session.Token != ""),
	)
}

// Load returns the stored record, or the logged-out sentinel when it is absent or unreadable.
func (s *Store) Load() Session {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read session", zap.String("path", s.path), zap.Error(err))
		}
		return LoggedOut()
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("failed to parse session", zap.String("path", s.path), zap.Error(err))
		return LoggedOut()
	}

	return session
}

// Clear removes the stored record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remove(); err != nil {
		s.logger.Error("failed to clear session", zap.String("path", s.path), zap.Error(err))
		return
	}

	s.logger.Debug("session cleared")
}

// Validate loads the record and drops it unless it holds a user and an unexpired token.
func (s *Store) Validate() Session {
	session := s.Load()

	if !session.IsAuthenticated() {
		s.logger.Debug("no valid session found, clearing")
		s.Clear()
		return LoggedOut()
	}

	expired, err := TokenExpired(session.Token, s.now())
	if err != nil {
		s.logger.Warn("failed to check token expiration", zap.Error(err))
	}
	if expired {
		s.logger.Info("session token expired, clearing", zap.String("user", session.email()))
		s.Clear()
		return LoggedOut()
	}

	return session
}

// AuthHeaders returns the Authorization header for the stored token.
// The record is re-read on every call since sign-in and sign-out change it between requests.
func (s *Store) AuthHeaders() map[string]string {
	session := s.Load()
	if session.Token == "" {
		return map[string]string{}
	}

	return map[string]string{"Authorization": "Bearer " + session.Token}
}

// TokenExpired decodes the exp claim from the payload segment of a JWT. Neither the header
// nor the signature is looked at. An undecodable payload counts as expired. Tokens without
// an exp claim never expire here; the server stays the authority either way.
func TokenExpired(token string, now time.Time) (bool, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return true, errors.New("decode token: no payload segment")
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return true, fmt.Errorf("decode token payload: %w", err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true, fmt.Errorf("parse token payload: %w", err)
	}

	raw, ok := claims["exp"]
	if !ok || raw == nil {
		return false, nil
	}

	exp, ok := raw.(float64)
	if !ok {
		return true, fmt.Errorf("decode exp claim: unexpected type %T", raw)
	}

	// exp is in seconds and may carry a fraction.
	seconds := float64(now.Unix()) + float64(now.Nanosecond())/float64(time.Second)
	return exp <= seconds, nil
}

func (s *Store) write(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, StorageKey+"_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := s.fs.Chmod(tmpName, filePerm); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func (s *Store) remove() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
