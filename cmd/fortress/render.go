package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fortress-go/internal/app"
	"fortress-go/internal/fortress"

	"github.com/fatih/color"
)

// palette is the set of colors one theme uses.
type palette struct {
	title  *color.Color
	meta   *color.Color
	pinned *color.Color
	tag    *color.Color
	high   *color.Color
	medium *color.Color
	ok     *color.Color
	warn   *color.Color
}

var palettes = map[app.Theme]palette{
	app.ThemeDark: {
		title:  color.New(color.FgHiWhite, color.Bold),
		meta:   color.New(color.FgHiBlack),
		pinned: color.New(color.FgHiYellow),
		tag:    color.New(color.FgHiCyan),
		high:   color.New(color.FgHiRed),
		medium: color.New(color.FgHiYellow),
		ok:     color.New(color.FgHiGreen),
		warn:   color.New(color.FgHiYellow),
	},
	app.ThemeLight: {
		title:  color.New(color.FgBlack, color.Bold),
		meta:   color.New(color.FgBlue),
		pinned: color.New(color.FgMagenta),
		tag:    color.New(color.FgCyan),
		high:   color.New(color.FgRed),
		medium: color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgRed),
	},
}

func paletteFor(t app.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[app.DefaultTheme]
}

const timeLayout = "2006-01-02 15:04"

func (p palette) priority(pr fortress.Priority) string {
	switch pr {
	case fortress.PriorityHigh:
		return p.high.Sprint(string(pr))
	case fortress.PriorityMedium:
		return p.medium.Sprint(string(pr))
	default:
		return string(pr)
	}
}

func (p palette) tags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = p.tag.Sprint("#" + t)
	}
	return strings.Join(out, " ")
}

// renderList prints one line per note with a short content preview.
func renderList(w io.Writer, notes []fortress.Note, view fortress.View, theme app.Theme) {
	p := paletteFor(theme)
	if len(notes) == 0 {
		fmt.Fprintf(w, "No notes in %s.\n", view)
		return
	}
	for _, n := range notes {
		marker := " "
		if n.IsPinned {
			marker = p.pinned.Sprint("*")
		}
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%s %s  %s  %s",
			marker,
			p.meta.Sprint(n.ID),
			p.title.Sprint(title),
			p.priority(n.Priority),
		)
		if len(n.Tags) > 0 {
			fmt.Fprintf(w, "  %s", p.tags(n.Tags))
		}
		if n.AudioBase64 != "" {
			fmt.Fprint(w, "  [audio]")
		}
		fmt.Fprintf(w, "  %s\n", p.meta.Sprint(n.UpdatedAt.Local().Format(timeLayout)))
		if preview := previewOf(n.Content, 72); preview != "" {
			fmt.Fprintf(w, "    %s\n", preview)
		}
	}
}

// renderNote prints a single note in full. JSON notes are pretty-printed when
// the content parses.
func renderNote(w io.Writer, n fortress.Note, theme app.Theme) {
	p := paletteFor(theme)
	p.title.Fprintln(w, n.Title)

	var state []string
	if n.IsPinned {
		state = append(state, p.pinned.Sprint("pinned"))
	}
	if n.IsArchived {
		state = append(state, "archived")
	}
	if n.IsTrashed {
		state = append(state, "trashed")
	}
	fmt.Fprintf(w, "%s  priority %s  color %s  format %s",
		p.meta.Sprint(n.ID), p.priority(n.Priority), n.Color, n.Format)
	if len(state) > 0 {
		fmt.Fprintf(w, "  [%s]", strings.Join(state, ", "))
	}
	fmt.Fprintln(w)
	p.meta.Fprintf(w, "created %s  updated %s\n",
		n.CreatedAt.Local().Format(timeLayout), n.UpdatedAt.Local().Format(timeLayout))
	if len(n.Tags) > 0 {
		fmt.Fprintln(w, p.tags(n.Tags))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatContent(n))

	if n.AudioBase64 != "" {
		fmt.Fprintln(w)
		if mime, data, err := fortress.DecodeAudio(n.AudioBase64); err == nil {
			p.meta.Fprintf(w, "audio: %s, %d bytes\n", mime, len(data))
		}
		if n.Transcript != "" {
			fmt.Fprintf(w, "transcript: %s\n", n.Transcript)
		}
	}
}

func formatContent(n fortress.Note) string {
	if n.Format != fortress.FormatJSON {
		return n.Content
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(n.Content), "", "  "); err != nil {
		return n.Content
	}
	return buf.String()
}

// previewOf returns the first line of s cut to at most limit runes.
func previewOf(s string, limit int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(line)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return line
}

func renderStatus(w io.Writer, st fortress.Status, theme app.Theme) {
	p := paletteFor(theme)
	if !st.AccountExists {
		fmt.Fprintln(w, "No account on this device. Run 'fortress register'.")
		return
	}
	fmt.Fprintf(w, "Account:      %s\n", p.title.Sprint(st.Username))
	quick := "off"
	if st.QuickAccess {
		quick = p.ok.Sprint("on")
	}
	fmt.Fprintf(w, "Quick access: %s\n", quick)
	if st.Unlocked {
		fmt.Fprintf(w, "Notes:        %d\n", st.NoteCount)
	}
	if st.Unavailable {
		p.warn.Fprintln(w, "Stored notes could not be decrypted.")
	}
	fmt.Fprintf(w, "Theme:        %s\n", theme)
}
