package assistant

import (
	"context"
	"fmt"

	"fortress-go/internal/fortress"
)

// Disabled is used when no assistant is configured. Every call fails with
// fortress.ErrExternalService, which the editor treats as "no result".
type Disabled struct {
	Reason string
}

var _ fortress.Assistant = Disabled{}

func (d Disabled) Transcribe(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("%w: %s", fortress.ErrExternalService, d.Reason)
}

func (d Disabled) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %s", fortress.ErrExternalService, d.Reason)
}
