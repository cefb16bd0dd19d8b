package main

import (
	"context"
	"fmt"
	"path/filepath"

	"fortress-go/internal/app"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup DIR",
	Short: "Copy the encrypted vault into a directory",
	Long: `Copy the account record and the encrypted notes into DIR without
decrypting anything. Point a filesystem storage config at DIR to use the copy.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp("Backup", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		copied, err := a.Backup(ctx, dir)
		if err != nil {
			return err
		}
		if len(copied) == 0 {
			fmt.Println("Nothing to back up.")
			return nil
		}

		fmt.Printf("Backed up %d item(s) to %s\n", len(copied), dir)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
