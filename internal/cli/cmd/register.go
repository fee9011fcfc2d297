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
	flagRegisterUser  string
	flagRegisterEmail string
	flagRegisterPhone string
	flagRegisterRole  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagRegisterUser == "" || flagRegisterEmail == "" || flagRegisterPhone == "" || flagRegisterRole == "" {
			return fmt.Errorf("--username, --email, --phone and --role are required")
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		var resp api.Response[api.AuthResult]
		err = apiClient.Post("/auth/register", map[string]string{
			"username": flagRegisterUser,
			"email":    flagRegisterEmail,
			"phone":    flagRegisterPhone,
			"role":     flagRegisterRole,
			"password": string(passwordBytes),
		}, &resp)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		cfg.Token = resp.Data.Token
		cfg.Username = resp.Data.User.Username
		cfg.Role = resp.Data.User.Role
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Registered and logged in as %s (%s)\n", resp.Data.User.Username, resp.Data.User.Role)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&flagRegisterUser, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&flagRegisterEmail, "email", "e", "", "Email address")
	registerCmd.Flags().StringVarP(&flagRegisterPhone, "phone", "p", "", "Phone number")
	registerCmd.Flags().StringVarP(&flagRegisterRole, "role", "r", "", "Role: researcher, doctor or patient")
	rootCmd.AddCommand(registerCmd)
}
