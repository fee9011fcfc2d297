package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/labshare/server/internal/cli/api"
	"github.com/labshare/server/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "labshare",
	Short: "LabShare CLI: exchange clinical files from the terminal",
	Long: `LabShare CLI talks to a LabShare server: researchers send files,
doctors and patients read them.

Get started:
  labshare login -u researcher1 -r researcher   Authenticate
  labshare upload results.pdf -c "Blood panel" -t dr_smith
  labshare inbox                                List conversations
  labshare read <file-id>                       Acknowledge a file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg.Token == "" {
		return errors.New("not logged in, run 'labshare login' first")
	}
	return nil
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return
	}
	fmt.Println(string(data))
}
