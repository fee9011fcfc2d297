package cmd

import (
	"fmt"
	"syscall"

	"github.com/labshare/server/internal/cli/api"
	"github.com/labshare/server/internal/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagLoginUser string
	flagLoginRole string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the LabShare server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagLoginUser == "" || flagLoginRole == "" {
			return fmt.Errorf("--username and --role are required")
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		var resp api.Response[api.AuthResult]
		err = apiClient.Post("/auth/login", map[string]string{
			"username": flagLoginUser,
			"role":     flagLoginRole,
			"password": string(passwordBytes),
		}, &resp)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		cfg.Token = resp.Data.Token
		cfg.Username = resp.Data.User.Username
		cfg.Role = resp.Data.User.Role
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", resp.Data.User.Username, resp.Data.User.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagLoginUser, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&flagLoginRole, "role", "r", "", "Role: researcher, doctor or patient")
	rootCmd.AddCommand(loginCmd)
}
