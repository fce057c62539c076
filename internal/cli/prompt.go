package cli

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// PromptMissing asks for any empty credential fields on the terminal. Fields
// that already have a value are not shown. A nil pointer skips the field.
func (c *Context) PromptMissing(name, email, password *string) error {
	if !c.Interactive {
		return nil
	}

	var fields []huh.Field
	if name != nil && *name == "" {
		fields = append(fields, huh.NewInput().Title("Name").Value(name))
	}
	if email != nil && *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email))
	}
	if password != nil && *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}

	err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("cancelled")
	}
	return err
}
