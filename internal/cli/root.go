package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/streakline/internal/api"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/session"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/storage/sqlite"
	"github.com/julianstephens/streakline/internal/tracker"
	"github.com/julianstephens/streakline/internal/utils"
	"github.com/julianstephens/streakline/internal/validation"
)

// Config is the resolved global configuration shared by every command.
type Config struct {
	APIURL       string
	ConfigDir    string
	SessionStore constants.StoreKind
	Timezone     string
	Timeout      time.Duration
	RateLimit    float64
	Debug        bool
}

// Context is handed to every command's Run method.
type Context struct {
	Config   Config
	Store    storage.Provider
	API      *api.Client
	Session  *session.Manager
	Location *time.Location
	Out      io.Writer

	// Interactive enables huh prompts for missing input.
	Interactive bool

	now func() time.Time
}

// NewContext opens the session store, builds the API client and restores any
// persisted session. The caller must Close the returned context.
func NewContext(cfg Config) (*Context, error) {
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, apperrors.Validation("invalid timezone %q", cfg.Timezone)
	}

	store, err := OpenStore(cfg.SessionStore, cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithRateLimit(cfg.RateLimit, constants.DefaultRateBurst),
	)
	mgr := session.NewManager(client, store)

	ctx := &Context{
		Config:      cfg,
		Store:       store,
		API:         client.WithTokenSource(mgr),
		Session:     mgr,
		Location:    loc,
		Out:         os.Stdout,
		Interactive: IsTerminal(),
		now:         time.Now,
	}

	if err := mgr.Restore(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return ctx, nil
}

// Close releases the session store.
func (c *Context) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// SetClock overrides the time source. Used by tests.
func (c *Context) SetClock(now func() time.Time) {
	c.now = now
}

// Now returns the current time in the configured timezone.
func (c *Context) Now() time.Time {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Today returns the current day as YYYY-MM-DD.
func (c *Context) Today() string {
	return c.Now().Format(constants.DateFormat)
}

// RequireAPI fails before any network call when no usable API URL is set.
func (c *Context) RequireAPI() error {
	if err := validation.BaseURL(c.Config.APIURL); err != nil {
		return fmt.Errorf("%w (set --api-url or %s)", err, constants.EnvAPIURL)
	}
	return nil
}

// NewTracker returns a completion tracker bound to the API client.
func (c *Context) NewTracker() *tracker.Tracker {
	return tracker.New(c.API, tracker.WithClock(c.Now), tracker.WithLocation(c.Location))
}

// Printf writes to the command's output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Print writes to the command's output.
func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.out(), args...)
}

// Println writes a line to the command's output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// OpenStore creates and initializes the session store of the given kind.
func OpenStore(kind constants.StoreKind, configDir string) (storage.Provider, error) {
	dir, err := ExpandHome(configDir)
	if err != nil {
		return nil, err
	}

	var store storage.Provider
	switch kind {
	case constants.StoreKeyring, "":
		store = keyring.NewStore()
	case constants.StoreSQLite:
		store = sqlite.NewStore(filepath.Join(dir, constants.SessionDBFileName))
	case constants.StoreFile:
		store = storage.NewJSONStore(filepath.Join(dir, constants.SessionFileName))
	default:
		return nil, apperrors.Validation("unknown session store %q (want keyring, sqlite or file)", kind)
	}

	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to open session store %s: %w", store.Describe(), err)
	}
	logger.Debug("Session store opened", "store", store.Describe())
	return store, nil
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
