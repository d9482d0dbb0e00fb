package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/state"
)

type SignupCmd struct {
	Email    string `help:"Account email, prompted when omitted"`
	Password string `help:"Account password, prompted when omitted" env:"RECIPEBOOK_PASSWORD"`
}

func (s *SignupCmd) Run(ctx context.Context, globals *Globals) error {
	creds, err := credentials(globals, s.Email, s.Password)
	if err != nil {
		return err
	}

	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.authenticate(ctx, auth.SignupStart{Credentials: creds})
	if err != nil {
		return fmt.Errorf("sign up failed: %w", err)
	}

	printSignedIn(globals, "Signed up", user)
	return nil
}

type LoginCmd struct {
	Email    string `help:"Account email, prompted when omitted"`
	Password string `help:"Account password, prompted when omitted" env:"RECIPEBOOK_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	creds, err := credentials(globals, l.Email, l.Password)
	if err != nil {
		return err
	}

	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.authenticate(ctx, auth.LoginStart{Credentials: creds})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	printSignedIn(globals, "Logged in", user)
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.dispatch(ctx, auth.Logout{Reason: auth.LogoutUser}); err != nil {
		return err
	}

	fmt.Fprintln(globals.out(), "Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.restore(ctx)
	if errors.Is(err, state.ErrNotAuthenticated) {
		fmt.Fprintln(globals.out(), "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	out := globals.out()
	fmt.Fprintln(out, titleStyle.Render("Current session"))
	fmt.Fprintln(out, field("Email", user.Email))
	fmt.Fprintln(out, field("User ID", user.UserID))
	fmt.Fprintln(out, field("Expires", formatExpiry(user.ExpiresAt)))

	claims, err := auth.ParseClaims(user.Token)
	if err != nil {
		log.Debug().Err(err).Msg("identity token is not a readable JWT")
		return nil
	}

	if claims.Issuer != "" {
		fmt.Fprintln(out, field("Issuer", claims.Issuer))
	}
	if claims.AuthTime > 0 {
		fmt.Fprintln(out, field("Auth time", time.Unix(claims.AuthTime, 0).UTC().Format(time.RFC3339)))
	}
	fmt.Fprintln(out, field("Verified", fmt.Sprintf("%t", claims.EmailVerified)))

	return nil
}

type SessionCmd struct {
	Watch SessionWatchCmd `cmd:"" help:"Restore the session and wait until it expires"`
}

type SessionWatchCmd struct{}

func (s *SessionWatchCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.restore(ctx)
	if err != nil {
		return err
	}

	out := globals.out()
	fmt.Fprintf(out, "Watching session for %s, expires %s (press Ctrl+C to stop)\n", user.Email, formatExpiry(user.ExpiresAt))

	_, err = rt.state.Await(ctx, func(st state.AppState) bool { return st.Auth.User == nil })
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	fmt.Fprintln(out, "Session expired, logged out.")
	return nil
}

func printSignedIn(globals *Globals, verb string, user *models.Session) {
	fmt.Fprintf(globals.out(), "%s as %s\n", verb, user.Email)
	fmt.Fprintln(globals.out(), mutedStyle.Render("Session expires "+formatExpiry(user.ExpiresAt)))
}

func formatExpiry(t time.Time) string {
	return fmt.Sprintf("%s (in %s)", t.Local().Format(time.RFC3339), time.Until(t).Round(time.Second))
}
