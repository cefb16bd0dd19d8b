package fortress

import (
	"context"
	"strings"
)

// Assistant is the transcription/autocomplete service. Failures are returned
// wrapped in ErrExternalService.
type Assistant interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

type TaskKind int

const (
	TaskTranscription TaskKind = iota + 1
	TaskCompletion
)

func (k TaskKind) String() string {
	switch k {
	case TaskTranscription:
		return "transcription"
	case TaskCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// TaskResult is delivered on Editor.Results when an assistant task finishes.
type TaskResult struct {
	Kind       TaskKind
	Generation uint64
	Text       string
	Err        error
}

// Editor holds the draft of one note context and runs assistant tasks for it.
// Tasks run in their own goroutines and report only through Results; a result
// is merged by Apply only while its note context is still the open one.
//
// Editor methods must be called from a single goroutine.
type Editor struct {
	assistant Assistant
	logger    Logger

	draft      Draft
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	pending    int
	results    chan TaskResult
}

func NewEditor(assistant Assistant, logger Logger) *Editor {
	return &Editor{
		assistant: assistant,
		logger:    logger,
		results:   make(chan TaskResult, 4),
		ctx:       context.Background(),
		cancel:    func() {},
	}
}

// Open switches the editor to draft d. Tasks started for the previous context
// are cancelled and their results will be discarded.
func (e *Editor) Open(ctx context.Context, d Draft) {
	e.cancel()
	e.generation++
	e.pending = 0
	d.Tags = append([]string(nil), d.Tags...)
	e.draft = d
	e.ctx, e.cancel = context.WithCancel(ctx)
}

// Close cancels outstanding tasks and invalidates the current context.
func (e *Editor) Close() {
	e.cancel()
	e.generation++
	e.pending = 0
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() Draft {
	d := e.draft
	d.Tags = append([]string(nil), d.Tags...)
	return d
}

// Edit mutates the current draft in place.
func (e *Editor) Edit(fn func(d *Draft)) {
	fn(&e.draft)
}

// Results delivers finished tasks. Pass each one to Apply.
func (e *Editor) Results() <-chan TaskResult {
	return e.results
}

// Pending reports how many tasks of the current context have not been applied.
func (e *Editor) Pending() int {
	return e.pending
}

// Transcribe attaches a finished recording to the draft and starts
// transcribing it.
func (e *Editor) Transcribe(audio []byte, mimeType string) {
	e.draft.AudioBase64 = EncodeAudio(mimeType, audio)
	e.draft.Transcript = ""
	audio = append([]byte(nil), audio...)
	e.start(TaskTranscription, func(ctx context.Context) (string, error) {
		return e.assistant.Transcribe(ctx, audio, mimeType)
	})
}

// Complete asks the assistant to continue the draft's content. It reports
// false and starts nothing when the content is blank.
func (e *Editor) Complete() bool {
	prompt := e.draft.Content
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	e.start(TaskCompletion, func(ctx context.Context) (string, error) {
		return e.assistant.Complete(ctx, prompt)
	})
	return true
}

func (e *Editor) start(kind TaskKind, run func(ctx context.Context) (string, error)) {
	ctx, gen := e.ctx, e.generation
	e.pending++
	e.logger.Debug("assistant task started", "kind", kind.String())
	go func() {
		text, err := run(ctx)
		select {
		case e.results <- TaskResult{Kind: kind, Generation: gen, Text: text, Err: err}:
		case <-ctx.Done():
		}
	}()
}

// Apply merges r into the draft if r belongs to the open context. Failed
// transcriptions leave the transcript empty; failed or empty completions
// leave the content untouched. It reports whether the draft changed.
func (e *Editor) Apply(r TaskResult) bool {
	if r.Generation != e.generation {
		e.logger.Debug("discarding stale assistant result", "kind", r.Kind.String())
		return false
	}
	if e.pending > 0 {
		e.pending--
	}
	if r.Err != nil {
		e.logger.Warn("assistant task failed", "kind", r.Kind.String(), "error", r.Err)
		return false
	}

	switch r.Kind {
	case TaskTranscription:
		e.draft.Transcript = strings.TrimSpace(r.Text)
		return e.draft.Transcript != ""
	case TaskCompletion:
		text := strings.TrimSpace(r.Text)
		if text == "" {
			return false
		}
		e.draft.Content += " " + text
		return true
	}
	return false
}
