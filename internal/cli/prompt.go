package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/pflag"
)

// confirm asks before a destructive action. Non-interactive sessions never
// prompt and get false, so callers require --yes there.
func (a *App) confirm(title, description string) (bool, error) {
	if a.IsInteractive == nil || !a.IsInteractive() {
		return false, nil
	}
	if a.Confirm != nil {
		return a.Confirm(title, description)
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// optionalBool returns the flag's value only when the user set it.
func optionalBool(fs *pflag.FlagSet, name string) (*bool, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetBool(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalString(fs *pflag.FlagSet, name string) (*string, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetString(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalInt(fs *pflag.FlagSet, name string) (*int, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetInt(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
