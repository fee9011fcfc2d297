package cmd

import (
	"fmt"
	"net/url"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var flagRecipientsSearch string

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "List users a file can be addressed to (researchers only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{}
		if flagRecipientsSearch != "" {
			params.Set("search", flagRecipientsSearch)
		}

		var resp api.Response[[]api.User]
		if err := apiClient.Get("/users/recipients", params, &resp); err != nil {
			return fmt.Errorf("fetching recipients: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		for _, user := range resp.Data {
			fmt.Printf("%s (%s)  %s\n", user.Username, user.Role, user.Email)
		}
		return nil
	},
}

func init() {
	recipientsCmd.Flags().StringVarP(&flagRecipientsSearch, "search", "s", "", "Filter by username or email")
	rootCmd.AddCommand(recipientsCmd)
}
