package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/validation"
)

type LoginCmd struct {
	Email    string `help:"Account email." short:"e"`
	Password string `help:"Account password (prompted when omitted)." env:"STREAKLINE_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	if err := ctx.PromptMissing(nil, &c.Email, &c.Password); err != nil {
		return err
	}
	if err := validation.Login(c.Email, c.Password); err != nil {
		return err
	}

	if err := ctx.Session.Login(context.Background(), c.Email, c.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	u, _ := ctx.Session.User()
	ctx.Printf("✓ Logged in as %s\n", displayName(u.Name, u.Email))
	return nil
}

type RegisterCmd struct {
	Name     string `help:"Display name." short:"n"`
	Email    string `help:"Account email." short:"e"`
	Password string `help:"Account password (prompted when omitted)." env:"STREAKLINE_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireAPI(); err != nil {
		return err
	}
	if err := ctx.PromptMissing(&c.Name, &c.Email, &c.Password); err != nil {
		return err
	}
	if err := validation.Registration(c.Name, c.Email, c.Password); err != nil {
		return err
	}

	if err := ctx.Session.Register(context.Background(), c.Name, c.Email, c.Password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	ctx.Printf("✓ Registered and logged in as %s\n", displayName(c.Name, c.Email))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	_, wasLoggedIn := ctx.Session.Current()
	if err := ctx.Session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if wasLoggedIn {
		ctx.Println("✓ Logged out")
	} else {
		ctx.Println("Not logged in.")
	}
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	s, ok := ctx.Session.Current()
	if !ok {
		_, err := ctx.Session.RequireUser()
		return err
	}

	ctx.Printf("Name:    %s\n", s.User.Name)
	ctx.Printf("Email:   %s\n", s.User.Email)
	ctx.Printf("User ID: %s\n", s.UserID())
	ctx.Printf("Expires: %s (in %s)\n",
		s.ExpiresAt.In(ctx.Now().Location()).Format(time.RFC1123),
		s.ExpiresAt.Sub(ctx.Now()).Round(time.Minute))
	return nil
}

func displayName(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
