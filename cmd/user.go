/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/ptyxes/recipebook/types"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var (
	newUsername string
	newPassword string
	newEmail    string
	newAdmin    bool
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, logger, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.Close()

		role := types.RoleRegular
		if newAdmin {
			role = types.RoleAdmin
		}

		user, err := eng.Users.Create(cmd.Context(), newUsername, newPassword, newEmail, role)
		if err != nil {
			return fmt.Errorf("create user %q: %w", newUsername, err)
		}
		logger.Info("user created", "id", user.ID, "role", user.Role)
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d, uuid %s)\n", user.Role, user.Username, user.ID, user.UUID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&newUsername, "username", "", "login name")
	userCreateCmd.Flags().StringVar(&newPassword, "password", "", "password")
	userCreateCmd.Flags().StringVar(&newEmail, "email", "", "email address")
	userCreateCmd.Flags().BoolVar(&newAdmin, "admin", false, "grant the admin role")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")
}
