package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fieldtour/internal/bootstrap"
	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/errs"
	"fieldtour/internal/usecase/account"
	syncuc "fieldtour/internal/usecase/sync"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the survey backend and store the token",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, accountSvc *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		user, err := accountSvc.Login(ctx, email, password)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s <%s>\n", user.Name, user.Email); err != nil {
			return errs.Wrap(err, "write login output")
		}
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored token and cached profile",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, accountSvc *account.Service) error {
		if err := accountSvc.Logout(cmd.Context()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return err
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the employee profile, falling back to the cached copy offline",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, accountSvc *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		profile, fromCache, err := accountSvc.Profile(ctx)
		if err != nil {
			return err
		}

		source := "server"
		if fromCache {
			source = "cached snapshot"
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (supervisor: %s) [%s]\n",
			profile.Name, profile.Email, profile.SupervisorName, source)
		return err
	}),
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, accountSvc *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		current, _ := cmd.Flags().GetString("current")
		next, _ := cmd.Flags().GetString("new")
		confirm, _ := cmd.Flags().GetString("confirm")

		if err := accountSvc.ChangePassword(ctx, current, next, confirm); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "password changed")
		return err
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(changePasswordCmd)

	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	changePasswordCmd.Flags().String("current", "", "Current password")
	changePasswordCmd.Flags().String("new", "", "New password")
	changePasswordCmd.Flags().String("confirm", "", "New password confirmation")
	_ = changePasswordCmd.MarkFlagRequired("current")
	_ = changePasswordCmd.MarkFlagRequired("new")
	_ = changePasswordCmd.MarkFlagRequired("confirm")
}
