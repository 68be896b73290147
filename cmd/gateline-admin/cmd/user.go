package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var (
	userCreateUsername string
	userCreatePassword string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userCreateUsername == "" {
			return fmt.Errorf("--username is required")
		}
		if userCreatePassword == "" {
			return fmt.Errorf("--password is required")
		}

		client := NewClient(adminURL, adminToken)
		data, err := client.Request("POST", "/admin/users", map[string]string{
			"username": userCreateUsername,
			"password": userCreatePassword,
		})
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateUsername, "username", "", "Username for the new account")
	userCreateCmd.Flags().StringVar(&userCreatePassword, "password", "", "Password for the new account")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
