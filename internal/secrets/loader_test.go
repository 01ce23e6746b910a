package secrets

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/secrets/password", []byte("  from-file\n"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/secrets/empty", []byte(" \n"), 0o600))

	vars := env(map[string]string{"VAP_PASSWORD": " from-env ", "VAP_BLANK": ""})

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr string
	}{
		{name: "file wins", src: Source{Name: "password", File: "/secrets/password", Env: "VAP_PASSWORD", Value: "inline"}, expect: "from-file"},
		{name: "env before value", src: Source{Name: "password", Env: "VAP_PASSWORD", Value: "inline"}, expect: "from-env"},
		{name: "unset env falls back to value", src: Source{Name: "password", Env: "VAP_MISSING", Value: " inline "}, expect: "inline"},
		{name: "missing file", src: Source{Name: "password", File: "/secrets/nope"}, wantErr: `reading password from file "/secrets/nope"`},
		{name: "empty file", src: Source{Name: "password", File: "/secrets/empty"}, wantErr: `password file "/secrets/empty" is empty`},
		{name: "empty env", src: Source{Name: "password", Env: "VAP_BLANK"}, wantErr: "password variable VAP_BLANK is empty"},
		{name: "nothing configured", src: Source{}, wantErr: "secret: secret is not configured"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadFrom(fs, vars, tt.src)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := LoadFrom(afero.NewMemMapFs(), nil, Source{Name: "password"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
