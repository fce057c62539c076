package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/recurrence"
	"github.com/julianstephens/streakline/internal/utils"
	"github.com/julianstephens/streakline/internal/validation"
)

// SettingsCmd edits the defaults file read at startup. Keys are flag names in
// snake_case; flags and environment variables still take precedence.
type SettingsCmd struct {
	List bool `help:"List current settings."`

	APIURL       *string        `help:"Default API base URL." name:"set-api-url"`
	SessionStore *string        `help:"Default session store (keyring, sqlite, file)." name:"set-session-store"`
	Timezone     *string        `help:"Default timezone." name:"set-timezone"`
	Timeout      *time.Duration `help:"Default HTTP timeout." name:"set-timeout"`
	RateLimit    *float64       `help:"Default request rate limit per second." name:"set-rate-limit"`
	Weeks        *int           `help:"Default repeat window in weeks for new habits (1-12)." name:"set-weeks"`
	Unset        []string       `help:"Remove a key from the settings file."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	path, err := ConfigFilePath(ctx.Config.ConfigDir)
	if err != nil {
		return err
	}
	values, err := Load(path)
	if err != nil {
		return err
	}

	if c.List {
		ctx.Printf("Settings file: %s\n\n", path)
		ctx.Println("Effective settings:")
		ctx.Printf("  API URL:        %s\n", orNone(ctx.Config.APIURL))
		ctx.Printf("  Session Store:  %s\n", ctx.Config.SessionStore)
		ctx.Printf("  Timezone:       %s\n", orNone(ctx.Config.Timezone))
		ctx.Printf("  Timeout:        %s\n", ctx.Config.Timeout)
		ctx.Printf("  Rate Limit:     %g/s\n", ctx.Config.RateLimit)
		ctx.Printf("  Debug:          %v\n", ctx.Config.Debug)

		if len(values) > 0 {
			ctx.Println("\nSaved in file:")
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				ctx.Printf("  %-15s %v\n", k+":", values[k])
			}
		}
		return nil
	}

	updated := false
	if c.APIURL != nil {
		if err := validation.BaseURL(*c.APIURL); err != nil {
			return err
		}
		values["api_url"] = *c.APIURL
		updated = true
	}
	if c.SessionStore != nil {
		switch constants.StoreKind(*c.SessionStore) {
		case constants.StoreKeyring, constants.StoreSQLite, constants.StoreFile:
		default:
			return apperrors.Validation("unknown session store %q (want keyring, sqlite or file)", *c.SessionStore)
		}
		values["session_store"] = *c.SessionStore
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return apperrors.Validation("unknown timezone %q", *c.Timezone)
		}
		values["timezone"] = *c.Timezone
		updated = true
	}
	if c.Timeout != nil {
		if *c.Timeout <= 0 {
			return apperrors.Validation("timeout must be positive")
		}
		values["timeout"] = c.Timeout.String()
		updated = true
	}
	if c.RateLimit != nil {
		values["rate_limit"] = *c.RateLimit
		updated = true
	}
	if c.Weeks != nil {
		applied := recurrence.ClampWindowWeeks(*c.Weeks)
		if applied != *c.Weeks {
			ctx.Printf("Window clamped to %d weeks.\n", applied)
		}
		values["weeks"] = applied
		updated = true
	}
	for _, k := range c.Unset {
		if _, ok := values[k]; ok {
			delete(values, k)
			updated = true
		}
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := Save(path, values); err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

// ConfigFilePath returns the settings file location under configDir.
func ConfigFilePath(configDir string) (string, error) {
	dir, err := cli.ExpandHome(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// Load reads the settings file. A missing file yields an empty map.
func Load(path string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return values, nil
}

// Save writes the settings file, creating its directory if needed.
func Save(path string, values map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
