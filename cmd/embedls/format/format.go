package format

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diff"
	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/session"
)

type Handler struct {
	opts     *session.Options
	write    bool
	showDiff bool
}

func NewFormatCommand(opts *session.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "format project files with their .editorconfig settings",
	}

	cmd.Flags().BoolVarP(&me.write, "write", "w", false, "write the formatted files back to disk")
	cmd.Flags().BoolVarP(&me.showDiff, "diff", "d", false, "print a diff of every changed file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

// Run formats files, or every project file when none are named. Files
// without edits are not mentioned.
func (me *Handler) Run(ctx context.Context, out io.Writer, files []string) error {
	s, err := session.Open(ctx, *me.opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		files = s.Files
	}

	for _, file := range files {
		text, err := s.Document(file)
		if err != nil {
			return err
		}
		opts, err := s.FormatOptions(file)
		if err != nil {
			return err
		}
		edits, err := s.Decorator.Format(ctx, file, opts)
		if err != nil {
			return errors.Errorf("formatting %s: %w", file, err)
		}
		if len(edits) == 0 {
			continue
		}

		updated := langsvc.ApplyEdits(text, edits)
		if updated == text {
			continue
		}
		fmt.Fprintf(out, "%s: %d edits\n", file, len(edits))
		if me.showDiff {
			fmt.Fprintf(out, "--- %s\n%s", file, diff.Lines(text, updated))
		}
		if !me.write {
			continue
		}
		if err := afero.WriteFile(s.Fs, file, []byte(updated), 0o644); err != nil {
			return errors.Errorf("writing %s: %w", file, err)
		}
		zerolog.Ctx(ctx).Debug().Str("file", file).Int("edits", len(edits)).Msg("wrote format edits")
	}
	return nil
}
