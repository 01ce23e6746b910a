package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotConfigured is returned when a source names no file, variable or value.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via flags.
	Value string
	// File points to a file containing the secret value. It takes precedence
	// over Env and Value.
	File string
	// Env names an environment variable holding the secret. It takes
	// precedence over Value.
	Env string
}

// Load resolves src against the OS filesystem and environment.
func Load(src Source) (string, error) {
	return LoadFrom(afero.NewOsFs(), os.LookupEnv, src)
}

// LoadFrom returns the trimmed secret from File, then Env, then Value.
// A source that names none of them yields ErrNotConfigured.
func LoadFrom(fs afero.Fs, lookupEnv func(string) (string, bool), src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" && lookupEnv != nil {
		if value, ok := lookupEnv(env); ok {
			secret := strings.TrimSpace(value)
			if secret == "" {
				return "", fmt.Errorf("%s variable %s is empty", name, env)
			}
			return secret, nil
		}
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}

	return secret, nil
}
