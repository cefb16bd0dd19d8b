package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"fortress-go/internal/fortress"
)

func TestUserError(t *testing.T) {
	denied := "Incorrect password or username. Access denied."
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "wrong password", err: fortress.ErrInvalidCredentials, want: denied},
		{name: "no account looks the same", err: fmt.Errorf("login: %w", fortress.ErrNoAccount), want: denied},
		{name: "wrong pin", err: fortress.ErrInvalidPin, want: "Invalid PIN."},
		{name: "other errors pass through", err: errors.New("disk full"), want: "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userError(tt.err).Error(); got != tt.want {
				t.Errorf("userError() = %q, want %q", got, tt.want)
			}
		})
	}
	if userError(nil) != nil {
		t.Error("userError(nil) != nil")
	}
}

func TestPromptLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trims", input: "  alice \n", want: "alice"},
		{name: "partial line at EOF", input: "bob", want: "bob"},
		{name: "empty input", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got, err := promptLine(bufio.NewReader(strings.NewReader(tt.input)), &out, "Username: ")
			if (err != nil) != tt.wantErr {
				t.Fatalf("promptLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("promptLine() = %q, want %q", got, tt.want)
			}
			if out.String() != "Username: " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, io.EOF
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestPromptNewSecret(t *testing.T) {
	t.Run("matching entries", func(t *testing.T) {
		stubPasswords(t, "1234", "1234")
		var out strings.Builder
		got, err := promptNewSecret(&out, "PIN")
		if err != nil {
			t.Fatalf("promptNewSecret() error = %v", err)
		}
		if string(got) != "1234" {
			t.Errorf("promptNewSecret() = %q, want 1234", got)
		}
		if !strings.Contains(out.String(), "Confirm pin: ") {
			t.Errorf("prompts = %q", out.String())
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		stubPasswords(t, "1234", "4321")
		if _, err := promptNewSecret(io.Discard, "PIN"); err == nil {
			t.Error("promptNewSecret() expected error, got nil")
		}
	})

	t.Run("read failure", func(t *testing.T) {
		stubPasswords(t)
		if _, err := promptNewSecret(io.Discard, "Password"); !errors.Is(err, io.EOF) {
			t.Errorf("promptNewSecret() error = %v, want EOF", err)
		}
	})
}
