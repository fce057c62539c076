package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/cli/auth"
	"github.com/julianstephens/streakline/internal/cli/habits"
	"github.com/julianstephens/streakline/internal/cli/settings"
	"github.com/julianstephens/streakline/internal/cli/system"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
)

var CLI struct {
	Version      kong.VersionFlag
	APIURL       string        `help:"Base URL of the habit API." name:"api-url" env:"STREAKLINE_API_URL"`
	ConfigDir    string        `help:"Directory for settings, logs and file-backed sessions." default:"${config_dir}" env:"STREAKLINE_CONFIG_DIR"`
	SessionStore string        `help:"Where the session is kept: keyring, sqlite or file." enum:"keyring,sqlite,file" default:"keyring" env:"STREAKLINE_SESSION_STORE"`
	Timezone     string        `help:"IANA timezone used to decide what day it is." default:"Local" env:"STREAKLINE_TIMEZONE"`
	Timeout      time.Duration `help:"HTTP request timeout." default:"15s"`
	RateLimit    float64       `help:"Maximum API requests per second." default:"10"`
	Debug        bool          `help:"Log debug output to stderr."`

	Login    auth.LoginCmd        `cmd:"" help:"Sign in and store the session."`
	Register auth.RegisterCmd     `cmd:"" help:"Create an account and sign in."`
	Logout   auth.LogoutCmd       `cmd:"" help:"Clear the stored session."`
	Whoami   auth.WhoamiCmd       `cmd:"" help:"Show the signed-in user."`
	Habit    habits.HabitCmd      `cmd:"" help:"Create, list and complete habits."`
	Calendar habits.CalendarCmd   `cmd:"" help:"Show a month with completed days marked."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Session  system.SessionCmd    `cmd:"" help:"Inspect the stored session."`
	DebugCmd system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage default settings."`
}

func main() {
	configDir := resolveConfigDir(os.Args[1:])

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, filepath.Join(configDir, constants.ConfigFileName)),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	dir, err := cli.ExpandHome(CLI.ConfigDir)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logger.Close()

	appCtx, err := cli.NewContext(cli.Config{
		APIURL:       CLI.APIURL,
		ConfigDir:    dir,
		SessionStore: constants.StoreKind(CLI.SessionStore),
		Timezone:     CLI.Timezone,
		Timeout:      CLI.Timeout,
		RateLimit:    CLI.RateLimit,
		Debug:        CLI.Debug,
	})
	if err != nil {
		apperrors.Fatal(err)
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close session store", "error", closeErr)
	}
	apperrors.Fatal(err)
}

// resolveConfigDir finds the settings directory before flags are parsed, so
// the settings file can feed kong's defaults.
func resolveConfigDir(args []string) string {
	dir := constants.DefaultConfigDir
	if env := os.Getenv(constants.EnvConfigDir); env != "" {
		dir = env
	}
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config-dir="); ok {
			dir = v
		} else if arg == "--config-dir" && i+1 < len(args) {
			dir = args[i+1]
		}
	}
	if expanded, err := cli.ExpandHome(dir); err == nil {
		return expanded
	}
	return dir
}
