package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/clipworks/clipctl/internal/server"
	"github.com/clipworks/clipctl/internal/shared"
)

// identityConfig builds the OAuth2 config for the external identity
// provider, or nil when federated sign-in is not configured.
func identityConfig(config *shared.Config) *oauth2.Config {
	identity := config.Identity
	if identity.ClientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     identity.ClientID,
		ClientSecret: identity.ClientSecret,
		RedirectURL:  identity.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  identity.AuthURL,
			TokenURL: identity.TokenURL,
		},
	}
}

// AuthSignup registers a new account.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	err := r.session.SignUp(ctx,
		cmd.String("first-name"), cmd.String("last-name"),
		cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Account created, sign in with 'clipctl auth login'\n")
}

// AuthLogin exchanges email and password for a credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	cred, err := r.session.SignIn(ctx, email, cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("signed in", "email", email)
	return r.writePlain("✓ Signed in as %s (%s token)\n", email, cred.TokenType)
}

// AuthGoogle runs the federated sign-in flow: a loopback listener catches the
// provider redirect and the resulting assertion is presented to the backend.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	oauth := identityConfig(r.config)
	if oauth == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	redirect, err := url.Parse(oauth.RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(state)

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: router}
	go srv.Serve(listener)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
	r.writePlain("Open the following URL in your browser:\n\n%s\n\n", authURL)
	r.writePlain("Waiting for sign-in to complete...\n")

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthExchange, result.Error())
		}
		cred, err := r.session.SignInWithAssertion(ctx, result.Code)
		if err != nil {
			return err
		}
		r.logger.Info("federated sign-in complete")
		return r.writePlain("✓ Signed in (%s token)\n", cred.TokenType)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthLogout discards the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.SignOut(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports whether a credential is held and still accepted.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	cred, err := r.session.Credential()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not signed in\n")
	}
	if err != nil {
		return err
	}

	if cred.Email != "" {
		r.writePlain("✓ Signed in as %s\n", cred.Email)
	} else {
		r.writePlain("✓ Signed in\n")
	}
	r.writePlain("Obtained: %s\n", cred.ObtainedAt.Format(time.RFC1123))

	// A cheap authenticated call verifies the backend still accepts it.
	if _, err := r.client.Me(ctx); errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("Credential: ✗ Rejected by backend, sign in again\n")
	} else if err != nil {
		return r.writePlain("Credential: ? Could not verify (%v)\n", err)
	}
	return r.writePlain("Credential: ✓ Accepted\n")
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage backend authentication",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Required: true},
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "google",
				Usage:  "Sign in through the configured identity provider",
				Action: r.AuthGoogle,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored credential",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}
