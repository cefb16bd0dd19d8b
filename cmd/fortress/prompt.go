package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var stdin = bufio.NewReader(os.Stdin)

// promptLine prints prompt to w and reads one trimmed line from r. If EOF
// occurs after some input was read, the partial line is returned.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a value from the terminal without echo.
// The caller should clear the returned slice when done.
func promptSecret(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	secret, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return secret, nil
}

// promptNewSecret asks for a secret twice and fails when the entries differ.
func promptNewSecret(w io.Writer, prompt string) ([]byte, error) {
	first, err := promptSecret(w, prompt+": ")
	if err != nil {
		return nil, err
	}
	second, err := promptSecret(w, "Confirm "+strings.ToLower(prompt)+": ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("entries do not match")
	}
	return first, nil
}
