package rename

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diff"
	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/position"
	"github.com/walteh/embedls/pkg/session"
)

type Handler struct {
	opts     *session.Options
	write    bool
	showDiff bool
}

func NewRenameCommand(opts *session.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "rename <file> <line:col> <new-name>",
		Short: "rename the symbol at a position across the project",
		Args:  cobra.ExactArgs(3),
	}

	cmd.Flags().BoolVarP(&me.write, "write", "w", false, "write the edits back to disk")
	cmd.Flags().BoolVarP(&me.showDiff, "diff", "d", false, "print a diff of every changed file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		line, col, err := ParsePosition(args[1])
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args[0], line, col, args[2])
	}

	return cmd
}

// ParsePosition reads a 1-based "line:col" pair.
func ParsePosition(s string) (line, col int, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.Errorf("position %q: expected line:col", s)
	}
	line, err = strconv.Atoi(l)
	if err != nil || line < 1 {
		return 0, 0, errors.Errorf("position %q: bad line", s)
	}
	col, err = strconv.Atoi(c)
	if err != nil || col < 1 {
		return 0, 0, errors.Errorf("position %q: bad column", s)
	}
	return line, col, nil
}

func (me *Handler) Run(ctx context.Context, out io.Writer, file string, line, col int, newName string) error {
	s, err := session.Open(ctx, *me.opts)
	if err != nil {
		return err
	}
	text, err := s.Document(file)
	if err != nil {
		return err
	}

	offset := position.NewLineIndex(text).Offset(position.Place{Line: line - 1, Character: col - 1})
	edits, err := s.Decorator.Rename(ctx, file, offset, newName)
	if err != nil {
		return errors.Errorf("renaming at %s:%d:%d: %w", file, line, col, err)
	}
	if len(edits) == 0 {
		_, err := fmt.Fprintf(out, "nothing to rename at %s:%d:%d\n", file, line, col)
		return err
	}

	for _, fe := range edits {
		src, err := s.Document(fe.File)
		if err != nil {
			return err
		}
		li := position.NewLineIndex(src)
		for _, e := range fe.Edits {
			p := li.Place(e.Span.Start)
			fmt.Fprintf(out, "%s:%d:%d: %q -> %q\n", fe.File, p.Line+1, p.Character+1, src[e.Span.Start:e.Span.End], e.NewText)
		}
		updated := langsvc.ApplyEdits(src, fe.Edits)
		if me.showDiff {
			fmt.Fprintf(out, "--- %s\n%s", fe.File, diff.Lines(src, updated))
		}
		if !me.write {
			continue
		}
		if err := afero.WriteFile(s.Fs, fe.File, []byte(updated), 0o644); err != nil {
			return errors.Errorf("writing %s: %w", fe.File, err)
		}
		zerolog.Ctx(ctx).Debug().Str("file", fe.File).Int("edits", len(fe.Edits)).Msg("wrote rename edits")
	}
	return nil
}
