package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fortress-go/internal/app"
	"fortress-go/internal/fortress"

	"github.com/spf13/cobra"
)

var usePassword bool

// unlock opens the vault for a note command. Quick access is offered when a
// PIN-wrapped key exists, unless --password was given.
func unlock(ctx context.Context, a *app.FortressApp) error {
	v := a.Vault()
	quick, err := v.QuickAccessAvailable(ctx)
	if err != nil {
		return err
	}
	if quick && !usePassword {
		pin, err := promptSecret(os.Stderr, "PIN: ")
		if err != nil {
			return err
		}
		return v.UnlockWithPIN(ctx, string(pin))
	}
	return loginWithPassword(ctx, v)
}

func loginWithPassword(ctx context.Context, v *fortress.Vault) error {
	username, err := promptLine(stdin, os.Stderr, "Username: ")
	if err != nil {
		return err
	}
	password, err := promptSecret(os.Stderr, "Password: ")
	if err != nil {
		return err
	}
	defer clear(password)
	return v.Login(ctx, username, password)
}

// warnUnavailable tells the user the session is read-only.
func warnUnavailable(a *app.FortressApp) {
	if a.Vault().Unavailable() {
		p := paletteFor(a.Theme())
		p.warn.Fprintln(os.Stderr, "Warning: stored notes could not be decrypted. Nothing will be saved in this session.")
	}
}

// enableQuickAccess prompts for a new PIN and wraps the session key with it.
func enableQuickAccess(ctx context.Context, v *fortress.Vault) error {
	pin, err := promptNewSecret(os.Stderr, "PIN")
	if err != nil {
		return err
	}
	defer clear(pin)
	if err := v.EnableQuickAccess(ctx, string(pin)); err != nil {
		if errors.Is(err, fortress.ErrInvalidPinFormat) {
			return fmt.Errorf("PIN must be exactly %d digits", v.PinLength())
		}
		return err
	}
	return nil
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create the account on this device",
	RunE: withApp("Register", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		withPIN, _ := cmd.Flags().GetBool("pin")
		p := paletteFor(a.Theme())

		st, err := a.Vault().Status(ctx)
		if err != nil {
			return err
		}
		if st.AccountExists && !reset {
			return fmt.Errorf("%w: use --reset to replace it and discard its notes", fortress.ErrAccountExists)
		}
		if st.AccountExists {
			p.warn.Fprintln(os.Stderr, "Replacing the existing account. Its notes will be discarded.")
		}

		username, err := promptLine(stdin, os.Stderr, "Username: ")
		if err != nil {
			return err
		}
		password, err := promptNewSecret(os.Stderr, "Password")
		if err != nil {
			return err
		}
		defer clear(password)

		if err := a.Vault().Register(ctx, username, password, reset); err != nil {
			if errors.Is(err, fortress.ErrMissingCredentials) {
				return errors.New("please enter both username and password")
			}
			return err
		}
		p.ok.Printf("Account %s created.\n", username)

		if withPIN {
			if err := enableQuickAccess(ctx, a.Vault()); err != nil {
				return err
			}
			p.ok.Println("Quick access enabled.")
		}
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify your password and show vault status",
	RunE: withApp("Login", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if err := loginWithPassword(ctx, a.Vault()); err != nil {
			return err
		}
		warnUnavailable(a)
		return printStatus(ctx, a)
	}),
}

var quickAccessCmd = &cobra.Command{
	Use:   "quick-access",
	Short: "Set or replace the quick-access PIN",
	RunE: withApp("QuickAccess", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if err := unlock(ctx, a); err != nil {
			return err
		}
		if err := enableQuickAccess(ctx, a.Vault()); err != nil {
			return err
		}
		paletteFor(a.Theme()).ok.Println("Quick access enabled.")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account and session status",
	RunE: withApp("Status", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		return printStatus(ctx, a)
	}),
}

func printStatus(ctx context.Context, a *app.FortressApp) error {
	if err := a.CheckStorage(); err != nil {
		return err
	}
	st, err := a.Vault().Status(ctx)
	if err != nil {
		return err
	}
	renderStatus(os.Stdout, st, a.Theme())
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&usePassword, "password", false, "Unlock with username and password even when quick access is set up")

	registerCmd.Flags().Bool("reset", false, "Replace an existing account and discard its notes")
	registerCmd.Flags().Bool("pin", false, "Set up a quick-access PIN after registering")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(quickAccessCmd)
	rootCmd.AddCommand(statusCmd)
}
