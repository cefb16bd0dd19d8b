package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortress-go/internal/app"
	"fortress-go/internal/fortress"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: withApp("List", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")

		// Validate before prompting for credentials.
		v, err := fortress.ParseView(view)
		if err != nil {
			return err
		}
		if _, err := fortress.ParseSort(sort); err != nil {
			return err
		}

		if err := unlock(ctx, a); err != nil {
			return err
		}
		warnUnavailable(a)

		notes, err := a.ListNotes(view, search, sort)
		if err != nil {
			return err
		}
		renderList(os.Stdout, notes, v, a.Theme())
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("Show", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if err := unlock(ctx, a); err != nil {
			return err
		}
		n, err := a.Vault().Note(args[0])
		if err != nil {
			return err
		}
		renderNote(os.Stdout, n, a.Theme())
		return nil
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	RunE: withApp("Add", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if err := unlock(ctx, a); err != nil {
			return err
		}
		d := fortress.Draft{
			Format:   fortress.FormatText,
			Priority: fortress.PriorityLow,
			Color:    fortress.ColorDefault,
		}
		return editAndSave(ctx, a, cmd, d)
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a note",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("Edit", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if err := unlock(ctx, a); err != nil {
			return err
		}
		n, err := a.Vault().Note(args[0])
		if err != nil {
			return err
		}
		return editAndSave(ctx, a, cmd, fortress.DraftFrom(n))
	}),
}

// editAndSave applies the changed flags to d, runs any requested assistant
// tasks and saves the result.
func editAndSave(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, d fortress.Draft) error {
	p := paletteFor(a.Theme())
	warnUnavailable(a)

	if err := applyNoteFlags(cmd, &d); err != nil {
		return err
	}

	e := a.NewEditor()
	e.Open(ctx, d)
	defer e.Close()

	if template, _ := cmd.Flags().GetBool("template"); template {
		e.Edit(func(d *fortress.Draft) { d.InsertCredentialTemplate() })
	}

	if audioPath, _ := cmd.Flags().GetString("audio"); audioPath != "" {
		data, mimeType, err := readAudio(cmd, audioPath)
		if err != nil {
			return err
		}
		if transcribe, _ := cmd.Flags().GetBool("transcribe"); transcribe {
			e.Transcribe(data, mimeType)
		} else {
			e.Edit(func(d *fortress.Draft) {
				d.AudioBase64 = fortress.EncodeAudio(mimeType, data)
				d.Transcript = ""
			})
		}
	}

	if complete, _ := cmd.Flags().GetBool("complete"); complete {
		if !e.Complete() {
			p.warn.Fprintln(os.Stderr, "Nothing to complete: the note has no content.")
		}
	}

	if e.Pending() > 0 {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Waiting for the assistant..."
		s.Start()
		err := a.AwaitTasks(ctx, e)
		s.Stop()
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			p.warn.Fprintf(os.Stderr, "Assistant unavailable, saving without its result: %v\n", err)
		}
	}

	saved, err := a.Vault().SaveNote(ctx, e.Draft())
	if err != nil {
		if errors.Is(err, fortress.ErrEmptyNote) {
			return errors.New("nothing to save: give the note a title, content or audio")
		}
		return err
	}
	p.ok.Printf("Saved note %s\n", saved.ID)
	return nil
}

// applyNoteFlags copies every explicitly set note flag onto d.
func applyNoteFlags(cmd *cobra.Command, d *fortress.Draft) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		d.Title, _ = flags.GetString("title")
	}
	if flags.Changed("content") {
		content, _ := flags.GetString("content")
		if content == "-" {
			data, err := readAllStdin()
			if err != nil {
				return err
			}
			content = data
		}
		d.Content = content
	}
	if flags.Changed("tag") {
		d.Tags, _ = flags.GetStringSlice("tag")
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		pr := fortress.Priority(strings.ToLower(raw))
		switch pr {
		case fortress.PriorityLow, fortress.PriorityMedium, fortress.PriorityHigh:
			d.Priority = pr
		default:
			return fmt.Errorf("unknown priority %q (want low, medium or high)", raw)
		}
	}
	if flags.Changed("color") {
		d.Color, _ = flags.GetString("color")
	}
	if flags.Changed("format") {
		raw, _ := flags.GetString("format")
		switch f := fortress.Format(strings.ToLower(raw)); f {
		case fortress.FormatText, fortress.FormatJSON:
			d.Format = f
		default:
			return fmt.Errorf("unknown format %q (want text or json)", raw)
		}
	}
	if flags.Changed("pin") {
		d.IsPinned, _ = flags.GetBool("pin")
	}
	if flags.Changed("archive") {
		d.IsArchived, _ = flags.GetBool("archive")
	}
	return nil
}

func readAudio(cmd *cobra.Command, path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading audio: %w", err)
	}
	mimeType, _ := cmd.Flags().GetString("audio-mime")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return data, mimeType, nil
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

// newLifecycleCmd builds a command that applies one lifecycle transition.
func newLifecycleCmd(use, short, operation, done string, apply func(*fortress.Vault, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(operation, func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
			if err := unlock(ctx, a); err != nil {
				return err
			}
			warnUnavailable(a)
			if err := apply(a.Vault(), ctx, args[0]); err != nil {
				return err
			}
			paletteFor(a.Theme()).ok.Printf("Note %s %s.\n", args[0], done)
			return nil
		}),
	}
}

var purgeCmd = &cobra.Command{
	Use:   "purge ID",
	Short: "Delete a trashed note forever",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("Purge", func(ctx context.Context, a *app.FortressApp, cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("this cannot be undone; pass --yes to delete the note forever")
		}
		if err := unlock(ctx, a); err != nil {
			return err
		}
		if err := a.Vault().Purge(ctx, args[0]); err != nil {
			return err
		}
		paletteFor(a.Theme()).ok.Printf("Note %s deleted forever.\n", args[0])
		return nil
	}),
}

func addNoteFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("title", "t", "", "Note title")
	f.StringP("content", "c", "", "Note content ('-' reads stdin)")
	f.StringSlice("tag", nil, "Tags (repeat or comma-separate)")
	f.String("priority", string(fortress.PriorityLow), "Priority: low, medium or high")
	f.String("color", fortress.ColorDefault, "Color tag (default, yellow, red, dark, ...)")
	f.String("format", string(fortress.FormatText), "Content format: text or json")
	f.Bool("pin", false, "Pin the note")
	f.Bool("archive", false, "Archive the note")
	f.Bool("template", false, "Append the credential template and switch to json")
	f.String("audio", "", "Attach an audio recording from this file")
	f.String("audio-mime", "", "MIME type of --audio (guessed from the extension)")
	f.Bool("transcribe", false, "Transcribe the attached audio with the assistant")
	f.Bool("complete", false, "Ask the assistant to continue the content")
}

func init() {
	listCmd.Flags().String("view", string(fortress.ViewNotes), "View: notes, archive or trash")
	listCmd.Flags().StringP("search", "s", "", "Case-insensitive search in title, content, tags and transcript")
	listCmd.Flags().String("sort", string(fortress.SortNewest), "Sort: newest, oldest, title or priority")

	addNoteFlags(addCmd)
	addNoteFlags(editCmd)

	purgeCmd.Flags().Bool("yes", false, "Confirm permanent deletion")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(newLifecycleCmd("pin", "Pin a note", "Pin", "pinned", (*fortress.Vault).Pin))
	rootCmd.AddCommand(newLifecycleCmd("unpin", "Unpin a note", "Unpin", "unpinned", (*fortress.Vault).Unpin))
	rootCmd.AddCommand(newLifecycleCmd("archive", "Move a note to the archive", "Archive", "archived", (*fortress.Vault).Archive))
	rootCmd.AddCommand(newLifecycleCmd("unarchive", "Move a note out of the archive", "Unarchive", "unarchived", (*fortress.Vault).Unarchive))
	rootCmd.AddCommand(newLifecycleCmd("trash", "Move a note to the trash", "Trash", "moved to the trash", (*fortress.Vault).Trash))
	rootCmd.AddCommand(newLifecycleCmd("restore", "Restore a note from the trash", "Restore", "restored", (*fortress.Vault).Restore))
	rootCmd.AddCommand(purgeCmd)
}
