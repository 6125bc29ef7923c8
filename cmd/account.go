package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// AccountShow prints the signed-in user's profile.
func (r *Runner) AccountShow(ctx context.Context, cmd *cli.Command) error {
	user, err := r.client.Me(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader("Account")
	r.writePlain("Name:  %s\n", user.FullName())
	r.writePlain("Email: %s\n", user.Email)
	if user.SubscriptionPlan != "" {
		r.writePlain("Plan:  %s (%d tokens)\n", user.SubscriptionPlan, user.TokenBalance)
	}
	if user.ProfilePicture != "" {
		r.writePlain("Picture: %s\n", user.ProfilePicture)
	}
	return nil
}

// AccountPicture replaces the profile picture with a local image file.
func (r *Runner) AccountPicture(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")

	url, err := r.client.UpdateProfilePicture(ctx, path)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Profile picture updated: %s\n", url)
}

func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Show the signed-in user's profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: r.AccountShow,
		Commands: []*cli.Command{
			{
				Name:      "picture",
				Usage:     "Replace the profile picture",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.AccountPicture,
			},
		},
	}
}
