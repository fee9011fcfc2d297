package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagDownloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a received file and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		dest := flagDownloadOutput
		if dest == "" {
			dest = args[0]
		}

		if err := apiClient.DownloadToFile("/files/"+args[0]+"/download", dest); err != nil {
			return fmt.Errorf("download failed: %w", err)
		}

		fmt.Printf("Saved to %s\n", dest)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&flagDownloadOutput, "output", "o", "", "Destination path (default: file id)")
	rootCmd.AddCommand(downloadCmd)
}
