package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/services"
)

const (
	userNameFlag     = "name"
	userEmailFlag    = "email"
	userRoleFlag     = "role"
	userPasswordFlag = "password"
)

func newCreateUserCommand(configPath *string) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		userNameFlag: &cobraflags.StringFlag{
			Name:  userNameFlag,
			Value: "",
			Usage: "Display name",
		},
		userEmailFlag: &cobraflags.StringFlag{
			Name:  userEmailFlag,
			Value: "",
			Usage: "Login email, also recorded as reviewer identity",
		},
		userRoleFlag: &cobraflags.StringFlag{
			Name:  userRoleFlag,
			Value: models.RoleUser,
			Usage: "Account role (user, admin)",
		},
		userPasswordFlag: &cobraflags.StringFlag{
			Name:  userPasswordFlag,
			Value: "",
			Usage: "Initial password",
		},
	}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a reviewer or admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, closeDB, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			user, err := services.NewUserService(db).Create(cmd.Context(), &services.CreateUserRequest{
				Name:     flags[userNameFlag].GetString(),
				Email:    flags[userEmailFlag].GetString(),
				Role:     flags[userRoleFlag].GetString(),
				Password: flags[userPasswordFlag].GetString(),
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
