package testutil

import (
	"context"
	"sync"

	"fortress-go/internal/fortress"
)

// StubAssistant returns canned results. When Gate is non-nil every call waits
// for it to be closed (or for the context to end) before answering.
type StubAssistant struct {
	Transcript string
	Completion string
	Err        error
	Gate       chan struct{}

	mu      sync.Mutex
	prompts []string
	audio   [][]byte
}

var _ fortress.Assistant = (*StubAssistant)(nil)

func (a *StubAssistant) Transcribe(ctx context.Context, audio []byte, _ string) (string, error) {
	a.mu.Lock()
	a.audio = append(a.audio, audio)
	a.mu.Unlock()
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	return a.Transcript, a.Err
}

func (a *StubAssistant) Complete(ctx context.Context, prompt string) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	return a.Completion, a.Err
}

// Prompts returns the prompts passed to Complete so far.
func (a *StubAssistant) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.prompts...)
}

// Recordings returns the audio passed to Transcribe so far.
func (a *StubAssistant) Recordings() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte(nil), a.audio...)
}

func (a *StubAssistant) wait(ctx context.Context) error {
	if a.Gate == nil {
		return nil
	}
	select {
	case <-a.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
