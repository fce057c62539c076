package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// RepeatMode selects how a new habit's scheduled dates are generated
type RepeatMode string

// StoreKind names a session persistence backend
type StoreKind string

const (
	AppName           = "streakline"
	Version           = "v0.3.0"
	DefaultConfigDir  = "~/.config/streakline"
	ConfigFileName    = "config.json"
	SessionDBFileName = "session.db"
	SessionFileName   = "session.json"

	// DateFormat is the calendar date format exchanged with the API (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is used by the calendar command (YYYY-MM)
	MonthFormat = "2006-01"

	// TimestampFormat matches a JavaScript Date serialized to JSON
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

	// Environment variables
	EnvAPIURL       = "STREAKLINE_API_URL"
	EnvConfigDir    = "STREAKLINE_CONFIG_DIR"
	EnvSessionStore = "STREAKLINE_SESSION_STORE"
	EnvTimezone     = "STREAKLINE_TIMEZONE"

	// HTTP client defaults
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10.0
	DefaultRateBurst = 5
	RequestIDHeader  = "X-Request-ID"

	// Session store keys
	SessionKeyToken = "token"
	SessionKeyUser  = "user"

	// Session store kinds
	StoreKeyring StoreKind = "keyring"
	StoreSQLite  StoreKind = "sqlite"
	StoreFile    StoreKind = "file"

	// Repeat modes
	RepeatCustom RepeatMode = "custom"
	RepeatDaily  RepeatMode = "daily"
	RepeatWeekly RepeatMode = "weekly"

	// Recurrence window bounds (weeks)
	MinWindowWeeks     = 1
	MaxWindowWeeks     = 12
	DefaultWindowWeeks = 4

	// CategoryAll disables category filtering on the dashboard
	CategoryAll = "All"

	// PlaceholderPoints is shown on the dashboard until the API reports points
	PlaceholderPoints = 100
)

// Session States
const (
	StateLogin SessionState = iota
	StateRegister
	StateDashboard
	StateAddHabit
	StateHelp
)
