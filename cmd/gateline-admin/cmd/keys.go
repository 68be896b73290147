package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API key pairs",
	Long:  `Commands for creating, enabling, disabling, and deleting API key pairs.`,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API key pair",
	Long: `Create a new enabled API key pair. The secret is only returned once,
at creation time; store it securely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(adminURL, adminToken)
		data, err := client.Request("POST", "/admin/keys", nil)
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

var keysEnableCmd = &cobra.Command{
	Use:   "enable <key>",
	Short: "Re-enable a disabled API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(adminURL, adminToken)
		data, err := client.Request("POST", "/admin/keys/"+args[0]+"/enable", nil)
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

var keysDisableCmd = &cobra.Command{
	Use:   "disable <key>",
	Short: "Disable an API key",
	Long: `Disable an API key. Requests signed with it stop passing the gate
chain immediately; the pair stays in storage and can be re-enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(adminURL, adminToken)
		data, err := client.Request("POST", "/admin/keys/"+args[0]+"/disable", nil)
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an API key pair permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(adminURL, adminToken)
		if _, err := client.Request("DELETE", "/admin/keys/"+args[0], nil); err != nil {
			return err
		}
		fmt.Printf("Deleted key %s\n", args[0])
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysEnableCmd)
	keysCmd.AddCommand(keysDisableCmd)
	keysCmd.AddCommand(keysDeleteCmd)
	rootCmd.AddCommand(keysCmd)
}
