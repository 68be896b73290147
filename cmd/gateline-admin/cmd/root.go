// Package cmd contains all CLI commands for gateline-admin.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	adminURL   string
	adminToken string
	output     string
)

// Client wraps HTTP client for admin API calls
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new admin API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Request makes an HTTP request to the admin API
func (c *Client) Request(method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// printJSON formats and prints JSON output
func printJSON(data []byte) error {
	var formatted bytes.Buffer
	if err := json.Indent(&formatted, data, "", "  "); err != nil {
		// If it's not valid JSON, just print as-is
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(formatted.String())
	return nil
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gateline-admin",
	Short: "CLI tool for managing a gateline server",
	Long: `gateline-admin is a command-line tool for managing a running gateline
server through its internal admin API.

It provides commands for managing:
  - Keys: Create, enable, disable, and delete API key pairs
  - Users: Create user accounts
  - Tokens: Mint admin bearer tokens
  - Contracts: List registered endpoint contracts

Examples:
  # Mint an admin token and create a key pair
  gateline-admin token mint --secret $GATELINE_ADMIN_SECRET
  gateline-admin keys create

  # Create a user account
  gateline-admin user create --username alice --password s3cret

Environment Variables:
  GATELINE_ADMIN_URL    Base URL of the admin API (default: http://localhost:8091)
  GATELINE_ADMIN_TOKEN  Bearer token for the admin API`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&adminURL, "url", "u", getEnvOrDefault("GATELINE_ADMIN_URL", "http://localhost:8091"), "Admin API base URL")
	rootCmd.PersistentFlags().StringVarP(&adminToken, "token", "t", os.Getenv("GATELINE_ADMIN_TOKEN"), "Admin API bearer token")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json, raw")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
