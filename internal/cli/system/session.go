package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/storage"
)

type SessionCmd struct {
	Status SessionStatusCmd `cmd:"" help:"Show where the session is stored and whether it is valid." default:"1"`
}

// SessionStatusCmd reports the session store in use and the stored session state.
type SessionStatusCmd struct{}

func (cmd *SessionStatusCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Store: %s\n", ctx.Store.Describe())

	if _, ok := ctx.Store.(*keyring.Store); ok {
		if keyring.IsAvailable() {
			ctx.Println("✓ OS keyring is available")
		} else {
			ctx.Println("❌ OS keyring is not available on this system")
			return errors.New("keyring unavailable")
		}
	}

	_, err := ctx.Store.Get(constants.SessionKeyToken)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ctx.Println("ℹ No session stored")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read session: %w", err)
	}

	s, ok := ctx.Session.Current()
	if !ok {
		ctx.Println("⚠ Stored session is no longer valid")
		return nil
	}
	ctx.Printf("✓ Session stored for %s\n", s.User.Email)
	ctx.Printf("  Expires %s\n", s.ExpiresAt.In(ctx.Now().Location()).Format("2006-01-02 15:04 MST"))
	return nil
}
