package commands

import (
	"Inbox/internal/cli/api"
	"Inbox/internal/cli/repo/fs"
	"Inbox/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string {
	return "register [--name N] [--invite CODE] <email> [password]"
}

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fset := flag.NewFlagSet("register", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	name := fset.String("name", "", "display name")
	invite := fset.String("invite", "", "invite code")
	if err := fset.Parse(args); err != nil {
		return ErrUsage
	}
	rest := fset.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return ErrUsage
	}
	email := rest[0]
	password, err := passwordArg(rest, 1, "Password: ")
	if err != nil {
		return err
	}

	client, store := anonClient(cfg)
	u, err := client.Register(ctx, api.RegisterRequest{Email: email, Password: password, Name: *name, InviteCode: *invite})
	if err != nil {
		return err
	}
	// регистрация не открывает сессию, входим сразу
	if _, err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("registered, but login failed: %w", err)
	}
	if err := store.Save(fs.Credentials{Token: client.Token(), Email: u.Email}); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(Out, "%s registered as %s\n", green("✓"), u.Email)
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the session token" }
func (loginCmd) Usage() string       { return "login [email] [password]" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	client, store := anonClient(cfg)
	email := store.LastEmail()
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		return ErrUsage
	}
	password, err := passwordArg(args, 1, fmt.Sprintf("Password for %s: ", email))
	if err != nil {
		return err
	}

	u, err := client.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return errors.New("invalid email or password")
		}
		return err
	}
	if err := store.Save(fs.Credentials{Token: client.Token(), Email: u.Email}); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(Out, "%s logged in as %s\n", green("✓"), u.Email)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "End the session on the server and forget the token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client, store, err := authedClient(cfg)
	if errors.Is(err, fs.ErrNoToken) {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}
	// протухшая сессия на сервере — не повод оставлять токен на диске
	if err := client.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s logged out\n", green("✓"))
	return nil
}

type meCmd struct{}

func (meCmd) Name() string        { return "me" }
func (meCmd) Description() string { return "Show the current user" }
func (meCmd) Usage() string       { return "me" }

func (meCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	u, err := client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "id:      %s\nemail:   %s\n", u.ID, u.Email)
	if u.Name != "" {
		fmt.Fprintf(Out, "name:    %s\n", u.Name)
	}
	fmt.Fprintf(Out, "since:   %s\n", u.CreatedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

type passwdCmd struct{}

func (passwdCmd) Name() string        { return "passwd" }
func (passwdCmd) Description() string { return "Change the password" }
func (passwdCmd) Usage() string       { return "passwd [current new]" }

func (passwdCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	current, err := passwordArg(args, 0, "Current password: ")
	if err != nil {
		return err
	}
	next, err := passwordArg(args, 1, "New password: ")
	if err != nil {
		return err
	}
	if err := client.ChangePassword(ctx, current, next); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "invalid password" {
			return errors.New("current password is wrong")
		}
		return err
	}
	fmt.Fprintf(Out, "%s password changed\n", green("✓"))
	return nil
}

// passwordArg берёт пароль из args[i] или спрашивает его.
func passwordArg(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return readPassword(prompt)
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(meCmd{})
	RegisterCmd(passwdCmd{})
}
