package fortress_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortress-go/internal/fortress"
	"fortress-go/internal/testutil"
)

func testKey(fill byte) *fortress.SessionKey {
	return fortress.NewSessionKey(bytes.Repeat([]byte{fill}, fortress.SessionKeySize))
}

func newNoteStore(store fortress.Store) *fortress.NoteStore {
	return fortress.NewNoteStore(store, testutil.NewTestCrypto().Cipher, fortress.NewNopLogger())
}

func sampleCollection() fortress.Collection {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return fortress.Collection{
		{
			ID: "n1", Title: "Groceries", Content: "milk, eggs",
			Format: fortress.FormatText, Priority: fortress.PriorityMedium, Color: fortress.ColorYellow,
			Tags: []string{"home"}, IsPinned: true, CreatedAt: at, UpdatedAt: at.Add(time.Hour),
		},
		{
			ID: "n2", Title: "Bank", Content: fortress.CredentialTemplate,
			Format: fortress.FormatJSON, Priority: fortress.PriorityHigh, Color: fortress.ColorDefault,
			Tags: []string{}, IsArchived: true, IsTrashed: true, CreatedAt: at, UpdatedAt: at,
			AudioBase64: fortress.EncodeAudio("audio/webm", []byte{1, 2, 3}), Transcript: "call the bank",
		},
	}
}

func TestNoteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	key := testKey(7)
	want := sampleCollection()

	require.NoError(t, newNoteStore(store).Save(ctx, want, key))

	raw, ok, err := store.Get(ctx, fortress.NotesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "Groceries", "blob must be ciphertext")

	got, err := newNoteStore(store).Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNoteStore_LoadMissingIsEmpty(t *testing.T) {
	got, err := newNoteStore(testutil.NewTestStore()).Load(context.Background(), testKey(1))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNoteStore_WrongKeyIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	require.NoError(t, newNoteStore(store).Save(ctx, sampleCollection(), testKey(1)))
	before, _, _ := store.Get(ctx, fortress.NotesKey)

	notes, err := newNoteStore(store).Load(ctx, testKey(2))
	assert.ErrorIs(t, err, fortress.ErrDecryptionUnavailable)
	assert.Nil(t, notes)

	after, _, _ := store.Get(ctx, fortress.NotesKey)
	assert.Equal(t, before, after, "failed load must not touch the blob")
}

func TestNoteStore_CorruptBlobIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	require.NoError(t, store.Set(ctx, fortress.NotesKey, []byte("not a ciphertext at all")))

	_, err := newNoteStore(store).Load(ctx, testKey(1))
	assert.ErrorIs(t, err, fortress.ErrDecryptionUnavailable)
}

func TestNoteStore_VersionConflict(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	key := testKey(3)

	first := newNoteStore(store)
	second := newNoteStore(store)
	_, err := first.Load(ctx, key)
	require.NoError(t, err)
	_, err = second.Load(ctx, key)
	require.NoError(t, err)

	require.NoError(t, second.Save(ctx, sampleCollection(), key))

	err = first.Save(ctx, fortress.Collection{}, key)
	assert.ErrorIs(t, err, fortress.ErrVersionConflict)

	got, err := newNoteStore(store).Load(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got, 2, "the conflicting save must not overwrite")

	// Saving after its own write keeps working.
	require.NoError(t, second.Save(ctx, got[:1], key))
}

func TestNoteStore_ForgetSkipsVersionCheck(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	key := testKey(3)
	ns := newNoteStore(store)
	_, err := ns.Load(ctx, key)
	require.NoError(t, err)
	require.NoError(t, newNoteStore(store).Save(ctx, sampleCollection(), key))

	ns.Forget()
	assert.NoError(t, ns.Save(ctx, fortress.Collection{}, key))
}

func TestNoteStore_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")
	store := testutil.NewFaultyStore(testutil.NewTestStore())
	ns := newNoteStore(store)

	store.FailGets(boom)
	_, err := ns.Load(ctx, testKey(1))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, fortress.ErrDecryptionUnavailable)

	store.FailGets(nil)
	store.FailSets(boom)
	err = ns.Save(ctx, sampleCollection(), testKey(1))
	assert.ErrorIs(t, err, boom)
}

func TestNoteStore_Discard(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore()
	ns := newNoteStore(store)
	require.NoError(t, ns.Save(ctx, sampleCollection(), testKey(1)))

	require.NoError(t, ns.Discard(ctx))

	_, ok, err := store.Get(ctx, fortress.NotesKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, ns.Save(ctx, fortress.Collection{}, testKey(2)))
}
