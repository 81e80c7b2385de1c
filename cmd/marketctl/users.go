package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"flipyard/internal/database"
	"flipyard/internal/models"
	"flipyard/internal/repository"
	"flipyard/internal/service"
)

type accountAdmin interface {
	ResolveEmail(ctx context.Context, email string) (models.User, error)
	SetBanned(ctx context.Context, userID string, banned bool) error
	SetAdmin(ctx context.Context, userID string, admin bool) error
}

type userAction func(ctx context.Context, admin accountAdmin, userID string) error

var userActions = map[string]userAction{
	"ban": func(ctx context.Context, a accountAdmin, id string) error {
		return a.SetBanned(ctx, id, true)
	},
	"unban": func(ctx context.Context, a accountAdmin, id string) error {
		return a.SetBanned(ctx, id, false)
	},
	"promote": func(ctx context.Context, a accountAdmin, id string) error {
		return a.SetAdmin(ctx, id, true)
	},
	"demote": func(ctx context.Context, a accountAdmin, id string) error {
		return a.SetAdmin(ctx, id, false)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Moderate accounts by email",
}

func init() {
	for _, name := range []string{"ban", "unban", "promote", "demote"} {
		usersCmd.AddCommand(newUserCmd(name))
	}
}

func newUserCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <email>",
		Short: fmt.Sprintf("%s the account with the given email", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()

			admin := service.NewAdminService(repository.NewUserRepository(pool), logger)
			return applyUserAction(ctx, admin, name, args[0], cmd.OutOrStdout())
		},
	}
}

func applyUserAction(ctx context.Context, admin accountAdmin, action, email string, out io.Writer) error {
	run, ok := userActions[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}

	user, err := admin.ResolveEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := run(ctx, admin, user.ID); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s (%s)\n", action, user.Email, user.ID)
	return nil
}
