package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/portal"
)

func newLoginCmd(app *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				line, err := bufio.NewReader(app.in).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password required: pass --password or pipe it on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			resp, err := app.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			surface := app.session.Surface()
			app.printf("Signed in as %s (%s). Home: %s\n", resp.User.FullName, resp.User.Role.Label(), surface.Home)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.client.Logout(); err != nil {
				return err
			}
			app.printf("Signed out.\n")
			return nil
		},
	}
}

func newWhoamiCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and the views it can reach",
		RunE: func(_ *cobra.Command, _ []string) error {
			surface := app.session.Surface()
			if profile, ok := app.session.Profile(); ok && surface.Role != portal.Guest {
				app.printf("%s <%s> role=%s\n", profile.FullName, profile.Email, surface.Role)
			} else {
				app.printf("Not signed in.\n")
			}
			app.printf("Home: %s\n", surface.Home)
			for _, item := range surface.Menu {
				app.printf("  %-16s %s\n", item.Label, item.Path)
			}
			return nil
		},
	}
}

func newRegisterCmd(app *cli) *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Apply for a resident account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.printf("Registered %s. Status: %s. An administrator will review the account.\n", user.Email, user.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&req.Block, "block", "", "block")
	cmd.Flags().StringVar(&req.HouseNumber, "house", "", "house number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	return cmd
}
