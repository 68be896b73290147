package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gateline/gateline/pkg/middleware"
)

var (
	tokenSecret  string
	tokenSubject string
	tokenIssuer  string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint admin bearer tokens",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint an admin API bearer token",
	Long: `Mint a signed bearer token for the admin API. Requires the same
secret the server was configured with; no server round-trip is made.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			return fmt.Errorf("--secret is required")
		}

		token, err := middleware.MintAdminToken(tokenSecret, tokenIssuer, tokenSubject, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().StringVar(&tokenSecret, "secret", "", "Admin signing secret")
	tokenMintCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject")
	tokenMintCmd.Flags().StringVar(&tokenIssuer, "issuer", "gateline", "Token issuer")
	tokenMintCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.AddCommand(tokenMintCmd)
	rootCmd.AddCommand(tokenCmd)
}
