package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/vaphq/vap/internal/secrets"
	"github.com/vaphq/vap/internal/vap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errNoTerminal = errors.New("no terminal available for an interactive prompt")

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// resolvePassword loads the password from a file or VAP_PASSWORD and prompts for it otherwise.
func resolvePassword(passwordFile string) (string, error) {
	password, err := secrets.Load(secrets.Source{
		Name: "password",
		File: passwordFile,
		Env:  "VAP_PASSWORD",
	})
	if err == nil {
		return password, nil
	}
	if !errors.Is(err, secrets.ErrNotConfigured) {
		return "", err
	}

	if !interactive() {
		return "", fmt.Errorf("%w (use --password-file or VAP_PASSWORD)", errNoTerminal)
	}

	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}

	return prompt.Run()
}

func confirm(label string) (bool, error) {
	if !interactive() {
		return false, fmt.Errorf("%w (use --yes)", errNoTerminal)
	}

	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}

	return answer == PromptYes, nil
}

// selectDeveloper asks the user to pick one of developers and returns its id.
func selectDeveloper(developers []vap.Developer) (string, error) {
	if len(developers) == 0 {
		return "", errors.New("no developers yet, add one with 'vap developers add'")
	}
	if !interactive() {
		return "", fmt.Errorf("%w (use --developer)", errNoTerminal)
	}

	prompt := promptui.Select{
		Label: "Choose a developer and press ENTER",
		Items: developers,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ .Name | cyan }} ({{ .ID }})",
			Inactive: "  {{ .Name }} ({{ .ID }})",
			Selected: "developer: {{ .Name }}",
		},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return developers[i].ID, nil
}
