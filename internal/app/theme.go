package app

import (
	"context"
	"fmt"
	"strings"

	"fortress-go/internal/fortress"
)

// Theme selects the CLI color palette. It is stored unencrypted.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeDark
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
	}
}

// loadTheme reads the persisted theme. A missing or unrecognised value is the
// default theme.
func loadTheme(ctx context.Context, store fortress.Store) (Theme, error) {
	data, ok, err := store.Get(ctx, fortress.ThemeKey)
	if err != nil {
		return DefaultTheme, fmt.Errorf("reading theme: %w", err)
	}
	if !ok {
		return DefaultTheme, nil
	}
	t, err := ParseTheme(string(data))
	if err != nil {
		return DefaultTheme, nil
	}
	return t, nil
}

func saveTheme(ctx context.Context, store fortress.Store, t Theme) error {
	if err := store.Set(ctx, fortress.ThemeKey, []byte(t)); err != nil {
		return fmt.Errorf("writing theme: %w", err)
	}
	return nil
}
