package fortress

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View selects which lifecycle state a listing shows.
type View string

const (
	ViewNotes   View = "notes"
	ViewArchive View = "archive"
	ViewTrash   View = "trash"
)

// ParseView accepts a view name; the empty string is the notes view.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewNotes, nil
	case ViewNotes, ViewArchive, ViewTrash:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q (want notes, archive or trash)", s)
	}
}

// SortOrder selects the comparator of a listing.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortTitle    SortOrder = "title"
	SortPriority SortOrder = "priority"
)

// ParseSort accepts a sort name; the empty string is newest first.
func ParseSort(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortTitle, SortPriority:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort %q (want newest, oldest, title or priority)", s)
	}
}

// Query is the view filter, search filter and sort applied, in that order, to
// a collection.
type Query struct {
	View   View
	Search string
	Sort   SortOrder
}

// Apply returns the matching notes in display order. It never modifies c.
func (q Query) Apply(c Collection) []Note {
	view := q.View
	if view == "" {
		view = ViewNotes
	}
	needle := strings.ToLower(q.Search)

	out := make([]Note, 0, len(c))
	for _, n := range c {
		if !inView(n, view) {
			continue
		}
		if needle != "" && !matches(n, needle) {
			continue
		}
		out = append(out, n.clone())
	}

	compare := q.comparator()
	slices.SortStableFunc(out, func(a, b Note) int {
		if view == ViewNotes && a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return compare(a, b)
	})
	return out
}

func inView(n Note, v View) bool {
	switch v {
	case ViewTrash:
		return n.IsTrashed
	case ViewArchive:
		return n.IsArchived && !n.IsTrashed
	default:
		return !n.IsArchived && !n.IsTrashed
	}
}

// matches reports whether needle (already lower-cased) occurs in the title,
// content, a tag or the transcript.
func matches(n Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) ||
		strings.Contains(strings.ToLower(n.Transcript), needle) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func (q Query) comparator() func(a, b Note) int {
	switch q.Sort {
	case SortOldest:
		return func(a, b Note) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortTitle:
		col := collate.New(language.Und)
		return func(a, b Note) int { return col.CompareString(a.Title, b.Title) }
	case SortPriority:
		return func(a, b Note) int { return b.Priority.Rank() - a.Priority.Rank() }
	default:
		return func(a, b Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	}
}
