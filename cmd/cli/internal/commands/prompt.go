package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/wolfeidau/recipebook/internal/auth"
)

// Prompter asks for whichever credentials were not given on the command line.
type Prompter interface {
	Credentials(email, password string) (auth.Credentials, error)
}

type huhPrompter struct{}

func (huhPrompter) Credentials(email, password string) (auth.Credentials, error) {
	var fields []huh.Field

	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(required("email")))
	}

	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(required("password")))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return auth.Credentials{}, fmt.Errorf("prompt failed: %w", err)
	}

	return auth.Credentials{Email: email, Password: password}, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func credentials(globals *Globals, email, password string) (auth.Credentials, error) {
	if email != "" && password != "" {
		return auth.Credentials{Email: email, Password: password}, nil
	}
	return globals.prompter().Credentials(email, password)
}
