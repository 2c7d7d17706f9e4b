// Package main provides the econ CLI entry point.
// This file contains the non-interactive auth command surface.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"economist/cmd/econ/config"
	"economist/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the linked account session",
}

var authSignOutCmd = &cobra.Command{
	Use:     "signout",
	Aliases: []string{"logout", "sign-out"},
	Short:   "Remove the saved session and sign out",
	Long: `Deletes the local session file at ~/.economist/session.json.

Signing out when no session exists is not an error; it is reported as
already signed out. The command always exits zero and communicates the
outcome through its message.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("read environment settings: %w", err)
		}

		cleared := auth.Clear()
		if logger != nil {
			logger.Info("sign-out attempted",
				zap.String("outcome", cleared.Outcome.String()),
				zap.Error(cleared.Err))
		}

		res := signOutResult(cleared, settings)
		fmt.Fprintln(cmd.OutOrStdout(), res.content)
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an account session is linked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("read environment settings: %w", err)
		}

		path, err := auth.SessionPath()
		if err != nil {
			return fmt.Errorf("resolve session path: %w", err)
		}

		if auth.SignedInAt(path) {
			fmt.Fprintf(cmd.OutOrStdout(), "Account linked (session at %s).\n", path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out: no session file present.")
		}

		if settings.OverrideActive() {
			fmt.Fprintln(cmd.OutOrStdout(), "Note: ECONOMIST_API_KEY is set and bypasses session sign-in.")
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSignOutCmd)
	authCmd.AddCommand(authStatusCmd)
}
