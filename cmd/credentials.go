package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jhpark-dev/lottoctl/internal/shared"
	"github.com/jhpark-dev/lottoctl/internal/ui"
	"github.com/jhpark-dev/lottoctl/internal/vault"
	"github.com/urfave/cli/v3"
)

// CredentialsSet stores site credentials in the encrypted file.
//
// With --user-id and --password the credentials come from flags; otherwise
// an interactive form collects them along with the master password.
func (r *Runner) CredentialsSet(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	store := r.openVault(cmd)

	var creds *vault.Credentials
	var master string

	if cmd.String("user-id") != "" || cmd.String("password") != "" {
		creds = &vault.Credentials{
			UserID:           cmd.String("user-id"),
			Password:         cmd.String("password"),
			RechargePassword: cmd.String("recharge-password"),
		}

		resolved, err := vault.ResolveMasterPassword(cmd.String("master-password"), true)
		if err != nil {
			return err
		}
		master = resolved
	} else {
		var existing *vault.Credentials
		if store.Exists() {
			if resolved, err := vault.ResolveMasterPassword(cmd.String("master-password"), false); err == nil {
				existing, _ = store.Load(resolved)
			}
		}

		form := ui.NewForm(existing)
		if _, err := tea.NewProgram(form).Run(); err != nil {
			return fmt.Errorf("credential form failed: %w", err)
		}
		if form.Canceled() || !form.Done() {
			return fmt.Errorf("%w: credential entry canceled", shared.ErrMissingCredentials)
		}

		creds = form.Credentials()
		master = form.MasterPassword()
	}

	if err := store.Save(creds, master); err != nil {
		return err
	}

	r.logger.Info("credentials stored", "path", store.Path(), "user", shared.Mask(creds.UserID))
	return r.writePlain("Credentials for %s stored in %s\n", shared.Mask(creds.UserID), store.Path())
}

// CredentialsTest decrypts the store and optionally attempts a site login.
func (r *Runner) CredentialsTest(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	creds, err := r.loadCredentials(cmd)
	if err != nil {
		if errors.Is(err, vault.ErrWrongMasterPassword) {
			return fmt.Errorf("master password rejected: %w", err)
		}
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	r.writePlain("✓ Credential file decrypts (user %s)\n", shared.Mask(creds.UserID))

	if !cmd.Bool("login") {
		return nil
	}

	service, closeBrowser, err := r.siteService(ctx)
	if err != nil {
		return err
	}
	defer closeBrowser()

	if err := service.Login(ctx, creds.UserID, creds.Password); err != nil {
		return err
	}
	return r.writePlain("✓ Site login succeeded\n")
}

// CredentialsShow prints the stored credentials with secrets masked.
func (r *Runner) CredentialsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	creds, err := r.loadCredentials(cmd)
	if err != nil {
		return err
	}

	masked := map[string]string{
		"user_id":           creds.UserID,
		"password":          shared.Mask(creds.Password),
		"recharge_password": shared.Mask(creds.RechargePassword),
	}

	if cmd.Bool("json") {
		return r.writeJSON(masked, cmd.Bool("pretty"))
	}

	r.writePlain("User ID: %s\n", masked["user_id"])
	r.writePlain("Password: %s\n", masked["password"])
	if creds.RechargePassword != "" {
		r.writePlain("Recharge password: %s\n", masked["recharge_password"])
	}
	return nil
}

// credentialsCommand manages the encrypted credential store.
func credentialsCommand(r *Runner) *cli.Command {
	fileFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Path to the encrypted credential file",
		},
		&cli.StringFlag{
			Name:  "master-password",
			Usage: "Master password (falls back to env, secret file, then prompt)",
		},
	}

	return &cli.Command{
		Name:    "credentials",
		Aliases: []string{"creds"},
		Usage:   "Manage the encrypted credential store",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Store site credentials (interactive form unless flags are given)",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Site user id (skips the interactive form)",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Site password",
					},
					&cli.StringFlag{
						Name:  "recharge-password",
						Usage: "Deposit recharge password",
					},
				}, fileFlags...),
				Action: r.CredentialsSet,
			},
			{
				Name:  "test",
				Usage: "Verify the master password decrypts the store",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "login",
						Usage: "Also attempt a site login",
					},
				}, fileFlags...),
				Action: r.CredentialsTest,
			},
			{
				Name:  "show",
				Usage: "Print stored credentials with secrets masked",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				}, fileFlags...),
				Action: r.CredentialsShow,
			},
		},
	}
}
