package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var (
	flagUploadCaption    string
	flagUploadRecipients []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Send a file to up to three recipients (researchers only)",
	Long: `Upload a file with a caption for one to three doctors or patients.

  labshare upload results.pdf -c "Blood panel, all normal" -t dr_smith -t patient_jane`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		if flagUploadCaption == "" {
			return fmt.Errorf("--caption is required")
		}
		if len(flagUploadRecipients) == 0 {
			return fmt.Errorf("at least one --to recipient is required")
		}

		fields := url.Values{"caption": {flagUploadCaption}}
		for _, recipient := range flagUploadRecipients {
			fields.Add("recipients", recipient)
		}

		var resp api.Response[api.FileRecord]
		if err := apiClient.Upload("/files", "file", args[0], fields, &resp); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		names := make([]string, 0, len(resp.Data.Recipients))
		for _, r := range resp.Data.Recipients {
			names = append(names, r.Username)
		}
		fmt.Printf("Uploaded %s (%d bytes) to %s\n", resp.Data.FileName, resp.Data.Size, strings.Join(names, ", "))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&flagUploadCaption, "caption", "c", "", "Caption / notes for the recipients")
	uploadCmd.Flags().StringArrayVarP(&flagUploadRecipients, "to", "t", nil, "Recipient username (repeatable, max 3)")
	rootCmd.AddCommand(uploadCmd)
}
