package main

import (
	"context"
	"fmt"

	"fortress-go/internal/app"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or change the color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(app.ThemeLight), string(app.ThemeDark)},
	RunE: withApp("Theme", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Println(a.Theme())
			return nil
		}
		t, err := a.SetTheme(ctx, args[0])
		if err != nil {
			return err
		}
		paletteFor(t).ok.Printf("Theme set to %s.\n", t)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
