package cmd

import (
	"fmt"
	"strings"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "List sent files, newest first (researchers only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.FileRecord]
		if err := apiClient.Get("/files/outbox", nil, &resp); err != nil {
			return fmt.Errorf("fetching outbox: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		if len(resp.Data) == 0 {
			fmt.Println("No files sent yet")
			return nil
		}

		for _, file := range resp.Data {
			names := make([]string, 0, len(file.Recipients))
			for _, r := range file.Recipients {
				names = append(names, r.Username)
			}
			status := "unread"
			if file.IsRead {
				status = "read"
			}
			fmt.Printf("%s  %s  %s → %s [%s]\n",
				file.ID,
				file.UploadedAt.Format("Jan 2, 2006"),
				file.FileName,
				strings.Join(names, ", "),
				status,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outboxCmd)
}
