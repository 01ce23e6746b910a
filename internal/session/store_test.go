package session

import (
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testPath = "/config/vap/vap_auth.json"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(fs, testPath, zap.NewNop(), WithClock(func() time.Time { return fixedNow })), fs
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// rawToken assembles a token from literal header and payload JSON with a dummy signature.
func rawToken(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func alice() *User {
	return &User{ID: "u1", Name: "Alice", Email: "alice@example.com"}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	saved := Session{User: alice(), Token: "abc.def.ghi"}
	store.Save(saved)

	assert.Equal(t, saved, store.Load())
}

func TestSaveOverwritesPreviousRecord(t *testing.T) {
	store, fs := newTestStore(t)

	store.Save(Session{User: alice(), Token: "first"})
	second := Session{User: &User{ID: "u2", Name: "Bob", Email: "bob@example.com"}, Token: "second"}
	store.Save(second)

	assert.Equal(t, second, store.Load())

	entries, err := afero.ReadDir(fs, "/config/vap")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLoadMissingRecord(t *testing.T) {
	store, _ := newTestStore(t)

	got := store.Load()

	assert.Equal(t, LoggedOut(), got)
	assert.False(t, got.IsAuthenticated())
}

func TestLoadCorruptRecord(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte("{not json"), 0o600))

	store := New(fs, testPath, zap.New(core))

	assert.Equal(t, LoggedOut(), store.Load())
	assert.Equal(t, 1, logs.FilterMessage("failed to parse session").Len())
}

func TestFailedSaveLeavesLoggedOut(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := New(fs, testPath, zap.NewNop())

	store.Save(Session{User: alice(), Token: "abc"})

	assert.Equal(t, LoggedOut(), store.Load())
}

func TestClear(t *testing.T) {
	store, fs := newTestStore(t)
	store.Save(Session{User: alice(), Token: "abc"})

	store.Clear()

	exists, err := afero.Exists(fs, testPath)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, LoggedOut(), store.Load())

	// Clearing twice is harmless.
	store.Clear()
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session func(t *testing.T) Session
		valid   bool
	}{
		{
			name: "unexpired token",
			session: func(t *testing.T) Session {
				return Session{User: alice(), Token: signedToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})}
			},
			valid: true,
		},
		{
			name: "token without exp claim",
			session: func(t *testing.T) Session {
				return Session{User: alice(), Token: signedToken(t, jwt.MapClaims{"sub": "u1"})}
			},
			valid: true,
		},
		{
			name: "expired token",
			session: func(t *testing.T) Session {
				return Session{User: alice(), Token: signedToken(t, jwt.MapClaims{"exp": fixedNow.Add(-time.Minute).Unix()})}
			},
		},
		{
			name: "expiry exactly now",
			session: func(t *testing.T) Session {
				return Session{User: alice(), Token: signedToken(t, jwt.MapClaims{"exp": fixedNow.Unix()})}
			},
		},
		{
			name: "header without alg",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: rawToken(`{"typ":"JWT"}`, fmt.Sprintf(`{"exp":%d}`, fixedNow.Add(time.Hour).Unix()))}
			},
			valid: true,
		},
		{
			name: "unregistered alg",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: rawToken(`{"alg":"ES256K"}`, fmt.Sprintf(`{"exp":%d}`, fixedNow.Add(time.Hour).Unix()))}
			},
			valid: true,
		},
		{
			name: "undecodable header",
			session: func(*testing.T) Session {
				payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, fixedNow.Add(time.Hour).Unix())))
				return Session{User: alice(), Token: "%%%." + payload + ".sig"}
			},
			valid: true,
		},
		{
			name: "two segments",
			session: func(*testing.T) Session {
				payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, fixedNow.Add(time.Hour).Unix())))
				return Session{User: alice(), Token: "eyJhbGciOiJIUzI1NiJ9." + payload}
			},
			valid: true,
		},
		{
			name: "fractional exp just after now",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: rawToken(`{"alg":"HS256"}`, fmt.Sprintf(`{"exp":%d.9}`, fixedNow.Unix()))}
			},
			valid: true,
		},
		{
			name: "fractional exp just before now",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: rawToken(`{"alg":"HS256"}`, fmt.Sprintf(`{"exp":%d.5}`, fixedNow.Unix()-1))}
			},
		},
		{
			name: "non-numeric exp",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: rawToken(`{"alg":"HS256"}`, `{"exp":"soon"}`)}
			},
		},
		{
			name: "malformed token",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: "not-a-jwt"}
			},
		},
		{
			name: "garbage payload segment",
			session: func(*testing.T) Session {
				return Session{User: alice(), Token: "eyJhbGciOiJIUzI1NiJ9.%%%.sig"}
			},
		},
		{
			name: "missing user",
			session: func(t *testing.T) Session {
				return Session{Token: signedToken(t, jwt.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})}
			},
		},
		{
			name: "missing token",
			session: func(*testing.T) Session {
				return Session{User: alice()}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, fs := newTestStore(t)
			stored := tt.session(t)
			store.Save(stored)

			got := store.Validate()

			exists, err := afero.Exists(fs, testPath)
			require.NoError(t, err)

			if tt.valid {
				assert.Equal(t, stored, got)
				assert.True(t, exists)
				return
			}

			assert.Equal(t, LoggedOut(), got)
			assert.False(t, exists, "invalid session must be removed from storage")
		})
	}
}

func TestAuthHeaders(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Empty(t, store.AuthHeaders())

	store.Save(Session{User: alice(), Token: "tok-1"})
	assert.Equal(t, map[string]string{"Authorization": "Bearer tok-1"}, store.AuthHeaders())

	// Headers follow the stored token without caching.
	store.Save(Session{User: alice(), Token: "tok-2"})
	assert.Equal(t, "Bearer tok-2", store.AuthHeaders()["Authorization"])

	store.Clear()
	assert.Empty(t, store.AuthHeaders())
}

func TestConcurrentSavesKeepOneWholeRecord(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for _, token := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			store.Save(Session{User: alice(), Token: token})
		}(token)
	}
	wg.Wait()

	got := store.Load()
	require.True(t, got.IsAuthenticated())
	assert.Contains(t, []string{"a", "b", "c", "d"}, got.Token)
}

func TestTokenExpiredComparesFractionalSeconds(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000000, 500_000_000)

	tests := []struct {
		payload string
		expired bool
	}{
		{payload: `{"exp":2000000}`, expired: false},
		{payload: `{"exp":1000000.9}`, expired: false},
		{payload: `{"exp":1000000.5}`, expired: true},
		{payload: `{"exp":1000000}`, expired: true},
		{payload: `{"sub":"u1"}`, expired: false},
	}

	for _, tt := range tests {
		expired, err := TokenExpired(rawToken(`{}`, tt.payload), now)
		require.NoError(t, err, tt.payload)
		assert.Equal(t, tt.expired, expired, tt.payload)
	}
}
