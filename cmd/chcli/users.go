package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certhouse/certhouse/storage/model"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "manage login accounts",
}

var userCreateArgs struct {
	password    string
	displayName string
	role        string
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "create a login account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := model.ParseRole(userCreateArgs.role)
		if err != nil {
			return err
		}
		u, err := store.UsersStorage().Create(args[0], userCreateArgs.password, userCreateArgs.displayName, role)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s user '%s' (id %d)\n", u.Role, u.Username, u.ID)
		return err
	},
}

func init() {
	usersCreateCmd.Flags().StringVarP(&userCreateArgs.password, "password", "p", "", "the password")
	usersCreateCmd.Flags().StringVar(&userCreateArgs.displayName, "display-name", "", "the display name")
	usersCreateCmd.Flags().StringVar(&userCreateArgs.role, "role", string(model.RoleParticipant), "admin or participant")
	_ = usersCreateCmd.MarkFlagRequired("password")
	usersCmd.AddCommand(usersCreateCmd)
}
