package fortress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortress-go/internal/fortress"
	"fortress-go/internal/testutil"
)

func awaitResult(t *testing.T, e *fortress.Editor) fortress.TaskResult {
	t.Helper()
	select {
	case r := <-e.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for assistant result")
		return fortress.TaskResult{}
	}
}

func TestEditor_CompletionAppends(t *testing.T) {
	stub := &testutil.StubAssistant{Completion: "  world.\n"}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{Title: "T", Content: "Hello"})

	require.True(t, e.Complete())
	assert.Equal(t, 1, e.Pending())

	r := awaitResult(t, e)
	assert.Equal(t, fortress.TaskCompletion, r.Kind)
	assert.True(t, e.Apply(r))
	assert.Equal(t, "Hello world.", e.Draft().Content)
	assert.Equal(t, 0, e.Pending())
	assert.Equal(t, []string{"Hello"}, stub.Prompts())
}

func TestEditor_CompleteBlankDoesNothing(t *testing.T) {
	stub := &testutil.StubAssistant{Completion: "never"}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{Title: "T", Content: "  \n"})

	assert.False(t, e.Complete())
	assert.Equal(t, 0, e.Pending())
	assert.Empty(t, stub.Prompts())
}

func TestEditor_Transcription(t *testing.T) {
	stub := &testutil.StubAssistant{Transcript: " buy milk "}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{Title: "T"})

	e.Transcribe([]byte{1, 2, 3}, "audio/webm")
	assert.Equal(t, "data:audio/webm;base64,AQID", e.Draft().AudioBase64, "recording is attached before transcription finishes")
	assert.Empty(t, e.Draft().Transcript)

	r := awaitResult(t, e)
	assert.Equal(t, fortress.TaskTranscription, r.Kind)
	assert.True(t, e.Apply(r))
	assert.Equal(t, "buy milk", e.Draft().Transcript)
	assert.Equal(t, [][]byte{{1, 2, 3}}, stub.Recordings())
}

func TestEditor_FailuresDegrade(t *testing.T) {
	stub := &testutil.StubAssistant{Err: fortress.ErrExternalService}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{Title: "T", Content: "Hello"})

	e.Transcribe([]byte{1}, "audio/webm")
	assert.False(t, e.Apply(awaitResult(t, e)))
	require.True(t, e.Complete())
	r := awaitResult(t, e)
	assert.True(t, errors.Is(r.Err, fortress.ErrExternalService))
	assert.False(t, e.Apply(r))

	d := e.Draft()
	assert.Equal(t, "Hello", d.Content)
	assert.Empty(t, d.Transcript)
	assert.NotEmpty(t, d.AudioBase64, "recording is kept without transcript")
	assert.Equal(t, 0, e.Pending())
}

func TestEditor_StaleResultDiscarded(t *testing.T) {
	stub := &testutil.StubAssistant{Completion: "stale"}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{ID: "a", Content: "first note"})

	require.True(t, e.Complete())
	r := awaitResult(t, e)

	e.Open(context.Background(), fortress.Draft{ID: "b", Content: "second note"})
	assert.False(t, e.Apply(r))
	assert.Equal(t, "second note", e.Draft().Content)

	e.Close()
	assert.False(t, e.Apply(r))
}

func TestEditor_SwitchCancelsRunningTask(t *testing.T) {
	gate := make(chan struct{})
	stub := &testutil.StubAssistant{Transcript: "late", Gate: gate}
	e := fortress.NewEditor(stub, fortress.NewNopLogger())
	e.Open(context.Background(), fortress.Draft{ID: "a", Title: "A"})
	e.Transcribe([]byte{1}, "audio/webm")

	e.Open(context.Background(), fortress.Draft{ID: "b", Title: "B"})
	assert.Equal(t, 0, e.Pending())
	close(gate)

	select {
	case r := <-e.Results():
		assert.False(t, e.Apply(r))
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, e.Draft().Transcript)
	assert.Empty(t, e.Draft().AudioBase64)
}

func TestEditor_DraftIsACopy(t *testing.T) {
	e := fortress.NewEditor(&testutil.StubAssistant{}, fortress.NewNopLogger())
	tags := []string{"a"}
	e.Open(context.Background(), fortress.Draft{Title: "T", Tags: tags})
	tags[0] = "changed"

	d := e.Draft()
	d.Tags[0] = "also changed"
	assert.Equal(t, []string{"a"}, e.Draft().Tags)

	e.Edit(func(d *fortress.Draft) { d.InsertCredentialTemplate() })
	assert.Equal(t, fortress.FormatJSON, e.Draft().Format)
}
