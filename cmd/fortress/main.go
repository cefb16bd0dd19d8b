package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"fortress-go/internal/app"
	"fortress-go/internal/config"
	"fortress-go/internal/fortress"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp reads the config and creates a FortressApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Add", "List").
func newApp(ctx context.Context, operation string) (*app.FortressApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run 'fortress config init' first): %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}

	a, err := app.NewFortressApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp builds the RunE of a command that needs the application context.
// The operation outcome is recorded before the app is closed.
func withApp(operation string, run func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, operation)
		if err != nil {
			return err
		}
		defer a.Close()

		err = run(ctx, a, cmd, args)
		a.Fail(err)
		return userError(err)
	}
}

// userError replaces credential failures with messages that do not reveal
// which part was wrong.
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fortress.ErrInvalidCredentials), errors.Is(err, fortress.ErrNoAccount):
		return errors.New("Incorrect password or username. Access denied.")
	case errors.Is(err, fortress.ErrInvalidPin):
		return errors.New("Invalid PIN.")
	case errors.Is(err, fortress.ErrDecryptionUnavailable):
		return errors.New("Your notes could not be decrypted in this session; changes are disabled until you log in again.")
	case errors.Is(err, fortress.ErrVersionConflict):
		return errors.New("Notes were changed by another fortress process; run the command again.")
	default:
		return err
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "fortress",
	Short:        "Encrypted personal notes vault",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s\n", describeStorage(cfg.Storage))
		fmt.Printf("Encryption: %s (pin length %d)\n", cfg.Encryption.Type, cfg.Encryption.PinLength)
		fmt.Printf("Assistant:  %s %s\n", cfg.Assistant.Type, cfg.Assistant.Model)
		return nil
	},
}

func describeStorage(s config.StorageConfig) string {
	switch s.Type {
	case "sqlite", "":
		return "sqlite " + s.DataDir
	case "filesystem":
		return "filesystem " + s.FSRoot
	case "s3", "minio":
		return fmt.Sprintf("%s bucket=%s prefix=%s", s.Type, s.Bucket, s.Prefix)
	default:
		return s.Type
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Echo all log records to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
