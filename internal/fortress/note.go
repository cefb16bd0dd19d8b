package fortress

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting. Unknown values rank as low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

func normalizePriority(p Priority) Priority {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityLow
	}
}

// Format only affects rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func normalizeFormat(f Format) Format {
	if f == FormatJSON {
		return FormatJSON
	}
	return FormatText
}

// Colors offered by the CLI. Color is free-form; these are just the known tags.
const (
	ColorDefault = "default"
	ColorYellow  = "yellow"
	ColorRed     = "red"
	ColorDark    = "dark"
)

// Note is a single entry of the encrypted collection.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Format      Format    `json:"format"`
	Priority    Priority  `json:"priority"`
	Color       string    `json:"color"`
	Tags        []string  `json:"tags"`
	IsPinned    bool      `json:"isPinned"`
	IsArchived  bool      `json:"isArchived"`
	IsTrashed   bool      `json:"isTrashed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	AudioBase64 string    `json:"audioBase64,omitempty"`
	Transcript  string    `json:"transcript,omitempty"`
}

func (n Note) clone() Note {
	n.Tags = append([]string(nil), n.Tags...)
	return n
}

// Draft carries the editable fields of a note between the editor and the vault.
// An empty ID creates a new note on save.
type Draft struct {
	ID          string
	Title       string
	Content     string
	Format      Format
	Priority    Priority
	Color       string
	Tags        []string
	IsPinned    bool
	IsArchived  bool
	AudioBase64 string
	Transcript  string
}

// DraftFrom starts a draft that edits n.
func DraftFrom(n Note) Draft {
	return Draft{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Format:      n.Format,
		Priority:    n.Priority,
		Color:       n.Color,
		Tags:        append([]string(nil), n.Tags...),
		IsPinned:    n.IsPinned,
		IsArchived:  n.IsArchived,
		AudioBase64: n.AudioBase64,
		Transcript:  n.Transcript,
	}
}

// Blank reports whether the draft has nothing worth saving.
func (d Draft) Blank() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" && d.AudioBase64 == ""
}

// applyTo copies the draft onto n, normalising every field.
func (d Draft) applyTo(n *Note) {
	n.Title = d.Title
	n.Content = d.Content
	n.Format = normalizeFormat(d.Format)
	n.Priority = normalizePriority(d.Priority)
	n.Color = strings.TrimSpace(d.Color)
	if n.Color == "" {
		n.Color = ColorDefault
	}
	n.Tags = NormalizeTags(d.Tags)
	n.IsPinned = d.IsPinned
	n.IsArchived = d.IsArchived
	n.AudioBase64 = d.AudioBase64
	n.Transcript = d.Transcript
}

// CredentialTemplate is the login skeleton inserted into JSON notes.
const CredentialTemplate = "Website: \nURL: \n\n{\n  \"user\": \"username\",\n  \"password\": \"password\"\n}"

// InsertCredentialTemplate appends the credential skeleton and switches the
// draft to the json format.
func (d *Draft) InsertCredentialTemplate() {
	if d.Content == "" {
		d.Content = CredentialTemplate
	} else {
		d.Content += "\n" + CredentialTemplate
	}
	d.Format = FormatJSON
}

// NormalizeTags trims tags, drops blanks and removes duplicates while keeping
// the first occurrence's position.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// EncodeAudio renders a finished recording as a data URL.
func EncodeAudio(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeAudio parses a data URL produced by EncodeAudio. A bare base64
// payload without the data URL prefix is accepted with an empty MIME type.
func DecodeAudio(s string) (mimeType string, data []byte, err error) {
	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return "", nil, errors.New("malformed audio data URL")
		}
		mimeType, _ = strings.CutSuffix(header, ";base64")
		payload = body
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding audio: %w", err)
	}
	return mimeType, data, nil
}
