package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/storage/sqlite"
	"github.com/julianstephens/streakline/internal/utils"
)

type DoctorCmd struct {
	Offline bool `help:"Skip the API reachability check."`
}

type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkipped
)

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, result checkResult, detail error) {
		switch result {
		case checkOK:
			ctx.Printf("✓ %s: OK\n", name)
		case checkWarn:
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", detail)
		case checkFail:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", detail)
			hasError = true
		case checkSkipped:
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", name, detail)
		}
	}

	// Check 1: API URL configured
	apiOK := false
	if err := ctx.RequireAPI(); err != nil {
		report("API URL", checkFail, err)
	} else {
		report("API URL", checkOK, nil)
		apiOK = true
	}

	// Check 2: Clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		report("Clock/timezone", checkFail, err)
	} else {
		report("Clock/timezone", checkOK, nil)
	}

	// Check 3: Session store usable
	if err := checkSessionStore(ctx); err != nil {
		report("Session store", checkFail, err)
	} else {
		report("Session store", checkOK, nil)
	}

	// Check 4: Session valid (warning only)
	loggedIn := false
	if s, ok := ctx.Session.Current(); ok {
		report("Session", checkOK, nil)
		ctx.Printf("   Logged in as %s until %s\n", s.User.Email, s.ExpiresAt.In(ctx.Now().Location()).Format(time.RFC1123))
		loggedIn = true
	} else {
		report("Session", checkWarn, errors.New("not logged in - run 'streakline login'"))
	}

	// Check 5: API reachable (only with a URL and a session)
	switch {
	case cmd.Offline:
		report("API reachable", checkSkipped, errors.New("--offline"))
	case !apiOK:
		report("API reachable", checkSkipped, errors.New("API URL not configured"))
	case !loggedIn:
		report("API reachable", checkSkipped, errors.New("not logged in"))
	default:
		if err := checkAPIReachable(ctx); err != nil {
			report("API reachable", checkFail, err)
		} else {
			report("API reachable", checkOK, nil)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("unknown timezone %q", ctx.Config.Timezone)
	}

	now := ctx.Now()
	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkSessionStore(ctx *cli.Context) error {
	if ctx.Store == nil {
		return fmt.Errorf("no session store configured")
	}
	ctx.Printf("   Using %s\n", ctx.Store.Describe())

	switch store := ctx.Store.(type) {
	case *keyring.Store:
		if !keyring.IsAvailable() {
			return fmt.Errorf("OS keyring is not available; use --session-store sqlite or file")
		}
	case *sqlite.Store:
		version, err := store.SchemaVersion()
		if err != nil {
			return err
		}
		ctx.Printf("   Schema version %d\n", version)
	}

	if _, err := ctx.Store.Get(constants.SessionKeyToken); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read session: %w", err)
	}
	return nil
}

func checkAPIReachable(ctx *cli.Context) error {
	timeout := ctx.Config.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	habits, err := ctx.API.Habits(reqCtx)
	if err != nil {
		return err
	}
	ctx.Printf("   %d habit(s) on the server\n", len(habits))
	return nil
}
