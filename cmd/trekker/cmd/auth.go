package cmd

import (
	"fmt"
	"time"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/token"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	registerReq session.RegisterRequest

	loginUsername string
	loginPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account. When the API answers with tokens the new session is
stored; when it asks for email verification nothing is stored.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			resp, err := a.manager.Register(cmd.Context(), registerReq)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			resp, err := a.manager.Login(cmd.Context(), loginUsername, loginPassword)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.User)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the refresh token and clear the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Fetch the current user from the API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			user, err := a.manager.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session without contacting the API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			out := cmd.OutOrStdout()
			cred, err := a.manager.Credential(cmd.Context())
			if err != nil {
				return err
			}
			if cred == nil {
				fmt.Fprintln(out, "not logged in")
				return nil
			}

			fmt.Fprintln(out, "logged in")
			info, err := token.Inspect(cred.AccessToken)
			if err != nil {
				return errors.Wrap(err, "[status] access token")
			}
			fmt.Fprintf(out, "  user id:    %s\n", info.UserID)
			if !info.ExpiresAt.IsZero() {
				state := "valid"
				if info.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(out, "  expires at: %s (%s)\n", info.ExpiresAt.Local().Format(time.RFC3339), state)
			}
			if cred.User != nil {
				return printJSON(out, cred.User)
			}
			return nil
		})
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerReq.Username, "username", "", "account username")
	registerCmd.Flags().StringVar(&registerReq.Email, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerReq.Password, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerReq.Password2, "password2", "", "password confirmation")
	registerCmd.Flags().StringVar(&registerReq.FirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerReq.LastName, "last-name", "", "last name")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&loginUsername, "username", "", "account username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, statusCmd)
}
