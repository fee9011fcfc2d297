package cmd

import (
	"fmt"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <file-id>",
	Short: "Acknowledge a received file without downloading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FileRecord]
		if err := apiClient.Patch("/files/"+args[0]+"/read", nil, &resp); err != nil {
			return fmt.Errorf("marking file read: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		fmt.Printf("Marked %s as read\n", resp.Data.FileName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
