package fortress

import (
	"fmt"
	"time"
)

// Collection is the ordered note sequence that is encrypted as one blob.
// Every mutating method returns a new Collection and leaves the receiver as is.
type Collection []Note

// Find returns the note with id.
func (c Collection) Find(id string) (Note, bool) {
	if i := c.index(id); i >= 0 {
		return c[i].clone(), true
	}
	return Note{}, false
}

func (c Collection) index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) clone() Collection {
	out := make(Collection, len(c))
	for i := range c {
		out[i] = c[i].clone()
	}
	return out
}

// Save creates a note from a draft without ID, or merges the draft onto the
// note with the draft's ID. New notes are prepended. Archived and trashed
// notes never keep a pin.
func (c Collection) Save(d Draft, now time.Time, ids IDGenerator) (Collection, Note, error) {
	if d.Blank() {
		return nil, Note{}, ErrEmptyNote
	}

	if d.ID == "" {
		n := Note{ID: ids.New(), CreatedAt: now, UpdatedAt: now}
		d.applyTo(&n)
		n.dropInactivePin()
		next := make(Collection, 0, len(c)+1)
		next = append(next, n)
		next = append(next, c.clone()...)
		return next, n.clone(), nil
	}

	i := c.index(d.ID)
	if i < 0 {
		return nil, Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, d.ID)
	}
	next := c.clone()
	n := &next[i]
	d.applyTo(n)
	n.dropInactivePin()
	if now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
	return next, n.clone(), nil
}

func (n *Note) dropInactivePin() {
	if n.IsArchived || n.IsTrashed {
		n.IsPinned = false
	}
}

func (c Collection) Pin(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		if n.IsTrashed || n.IsArchived {
			return fmt.Errorf("%w: only active notes can be pinned", ErrInvalidTransition)
		}
		n.IsPinned = true
		return nil
	})
}

func (c Collection) Unpin(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		n.IsPinned = false
		return nil
	})
}

// Archive moves a note to the archive and clears its pin.
func (c Collection) Archive(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		if n.IsTrashed {
			return fmt.Errorf("%w: note is in the trash", ErrInvalidTransition)
		}
		n.IsArchived = true
		n.IsPinned = false
		return nil
	})
}

func (c Collection) Unarchive(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		if n.IsTrashed {
			return fmt.Errorf("%w: note is in the trash", ErrInvalidTransition)
		}
		n.IsArchived = false
		return nil
	})
}

// Trash moves a note to the trash and clears its pin. The archive flag is kept.
func (c Collection) Trash(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		n.IsTrashed = true
		n.IsPinned = false
		return nil
	})
}

// Restore takes a note out of the trash. Its archive flag is preserved, so a
// note archived before trashing returns to the archive.
func (c Collection) Restore(id string) (Collection, error) {
	return c.transition(id, func(n *Note) error {
		if !n.IsTrashed {
			return fmt.Errorf("%w: note is not in the trash", ErrInvalidTransition)
		}
		n.IsTrashed = false
		return nil
	})
}

// Purge permanently removes a trashed note.
func (c Collection) Purge(id string) (Collection, error) {
	i := c.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if !c[i].IsTrashed {
		return nil, fmt.Errorf("%w: only trashed notes can be deleted forever", ErrInvalidTransition)
	}
	next := make(Collection, 0, len(c)-1)
	next = append(next, c[:i].clone()...)
	next = append(next, c[i+1:].clone()...)
	return next, nil
}

func (c Collection) transition(id string, fn func(n *Note) error) (Collection, error) {
	i := c.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	next := c.clone()
	if err := fn(&next[i]); err != nil {
		return nil, err
	}
	return next, nil
}
