package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	profileFields map[string]string
	picture       session.ProfilePicture

	oldPassword string
	newPassword string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update profile fields or upload a picture",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update profile fields and refresh the stored user.

Examples:
  trekker profile update --set first_name=Alice --set last_name=Smith`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(profileFields) == 0 {
			return errors.New("nothing to update: pass at least one --set field=value")
		}
		fields := make(map[string]any, len(profileFields))
		for k, v := range profileFields {
			fields[k] = v
		}
		return withApp(cmd.Context(), func(a *app) error {
			resp, err := a.manager.UpdateProfile(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}

var profilePictureCmd = &cobra.Command{
	Use:   "picture <file>",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "[profile picture] open")
		}
		defer f.Close()

		pic := picture
		pic.FileName = filepath.Base(args[0])
		pic.Content = f
		return withApp(cmd.Context(), func(a *app) error {
			resp, err := a.manager.UploadProfilePicture(cmd.Context(), pic)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			resp, err := a.manager.ChangePassword(cmd.Context(), oldPassword, newPassword)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		})
	},
}

func init() {
	profileUpdateCmd.Flags().StringToStringVar(&profileFields, "set", nil, "profile field to change, as field=value (repeatable)")

	profilePictureCmd.Flags().StringVar(&picture.Phone, "phone", "", "phone number")
	profilePictureCmd.Flags().StringVar(&picture.Address, "address", "", "postal address")
	profilePictureCmd.Flags().StringVar(&picture.Birthday, "birthday", "", "birthday (YYYY-MM-DD)")
	profilePictureCmd.Flags().StringVar(&picture.Gender, "gender", "", "gender")

	passwordCmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	passwordCmd.Flags().StringVar(&newPassword, "new", "", "new password")
	_ = passwordCmd.MarkFlagRequired("old")
	_ = passwordCmd.MarkFlagRequired("new")

	profileCmd.AddCommand(profileUpdateCmd, profilePictureCmd)
	rootCmd.AddCommand(profileCmd, passwordCmd)
}
