package system

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/session"
)

type DebugCmd struct {
	StorePath  *DebugStorePathCmd  `cmd:"" help:"Show where the session is stored."`
	Token      *DebugTokenCmd      `cmd:"" help:"Show the stored token's expiry."`
	DumpHabits *DebugDumpHabitsCmd `cmd:"" help:"Dump habits as JSON."`
	DumpHabit  *DebugDumpHabitCmd  `cmd:"" help:"Dump one habit as JSON."`
}

type DebugStorePathCmd struct{}

func (cmd *DebugStorePathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"store":      ctx.Store.Describe(),
		"config_dir": ctx.Config.ConfigDir,
	})
}

type DebugTokenCmd struct{}

func (cmd *DebugTokenCmd) Run(ctx *cli.Context) error {
	token, ok := ctx.Session.Token()
	if !ok {
		_, err := ctx.Session.RequireUser()
		return err
	}

	exp, err := session.TokenExpiry(token)
	if err != nil {
		return err
	}
	return printJSON(ctx, map[string]interface{}{
		"expires_at": exp.UTC().Format(time.RFC3339),
		"expired":    session.IsExpired(token, ctx.Now()),
		"remaining":  exp.Sub(ctx.Now()).Round(time.Second).String(),
	})
}

type DebugDumpHabitsCmd struct{}

func (cmd *DebugDumpHabitsCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	habits, err := ctx.API.Habits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	return printJSON(ctx, habits)
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	habits, err := ctx.API.Habits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	for _, h := range habits {
		if h.ID == cmd.ID {
			return printJSON(ctx, h)
		}
	}
	return fmt.Errorf("habit not found: %s", cmd.ID)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
