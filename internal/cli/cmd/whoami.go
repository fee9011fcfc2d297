package cmd

import (
	"fmt"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.User]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		fmt.Printf("%s (%s)\n", resp.Data.Username, resp.Data.Role)
		fmt.Printf("  email: %s\n", resp.Data.Email)
		fmt.Printf("  phone: %s\n", resp.Data.Phone)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
