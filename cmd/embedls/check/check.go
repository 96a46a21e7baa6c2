package check

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/session"
)

var ErrProblems = errors.Base("problems found")

type Handler struct {
	opts   *session.Options
	format string
}

func NewCheckCommand(opts *session.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "report diagnostics for the project or the given files",
	}

	cmd.Flags().StringVarP(&me.format, "format", "f", "text", "output format: text or vscode")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

func (me *Handler) formatter() (diagnostic.Formatter, error) {
	switch me.format {
	case "text":
		return diagnostic.NewTextFormatter(!color.NoColor), nil
	case "vscode":
		return diagnostic.NewVSCodeFormatter(), nil
	default:
		return nil, errors.Errorf("unknown format %q", me.format)
	}
}

// Run prints the diagnostics and fails with ErrProblems when any of them is
// an error.
func (me *Handler) Run(ctx context.Context, out io.Writer, files []string) error {
	formatter, err := me.formatter()
	if err != nil {
		return err
	}

	s, err := session.Open(ctx, *me.opts)
	if err != nil {
		return err
	}

	var diags []diagnostic.Diagnostic
	if len(files) == 0 {
		prog, err := s.Decorator.Program(ctx)
		if err != nil {
			return err
		}
		diags, err = prog.Diagnostics(ctx)
		if err != nil {
			return err
		}
	} else {
		for _, f := range files {
			if _, err := s.Document(f); err != nil {
				return err
			}
			fd, err := s.Decorator.Diagnostics(ctx, f)
			if err != nil {
				return err
			}
			diags = append(diags, fd...)
		}
	}

	data, err := formatter.Format(diags, s.Text)
	if err != nil {
		return errors.Errorf("formatting diagnostics: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}

	errorCount := 0
	for _, d := range diags {
		if d.Severity == diagnostic.SeverityError {
			errorCount++
		}
	}
	zerolog.Ctx(ctx).Debug().Int("diagnostics", len(diags)).Int("errors", errorCount).Msg("check complete")

	if errorCount > 0 {
		return errors.Errorf("%d errors: %w", errorCount, ErrProblems)
	}
	return nil
}
