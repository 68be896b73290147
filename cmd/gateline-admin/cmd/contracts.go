package cmd

import (
	"github.com/spf13/cobra"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Inspect registered endpoint contracts",
}

var contractsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(adminURL, adminToken)
		data, err := client.Request("GET", "/admin/contracts", nil)
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

func init() {
	contractsCmd.AddCommand(contractsListCmd)
	rootCmd.AddCommand(contractsCmd)
}
