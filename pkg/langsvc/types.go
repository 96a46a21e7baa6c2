package langsvc

import (
	"context"
	"fmt"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/position"
)

// Location is a span inside a named file. Whether the name is a source file
// or a generated one depends on which side of the decorator produced it.
type Location struct {
	File string
	Span position.Span
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.File, l.Span)
}

type TextEdit struct {
	Span    position.Span
	NewText string
}

type FileEdits struct {
	File  string
	Edits []TextEdit
}

type CompletionItem struct {
	Name   string
	Kind   string
	Detail string
	// Replace is the span the item overwrites, nil to let the editor pick the
	// word at the cursor.
	Replace    *position.Span
	InsertText string
}

type CompletionList struct {
	Items      []CompletionItem
	Incomplete bool
}

type Hover struct {
	Span     position.Span
	Contents string
}

type FoldingRange struct {
	Span position.Span
	Kind string
}

type FormatOptions struct {
	TabSize                int
	InsertSpaces           bool
	TrimTrailingWhitespace bool
	InsertFinalNewline     bool
}

// EmitFile is one output of a program emit. SourceFile names the input it was
// produced from.
type EmitFile struct {
	SourceFile string
	Name       string
	Text       string
}

// Program is a whole-project view of the engine.
type Program interface {
	RootFileNames() []string
	Diagnostics(ctx context.Context) ([]diagnostic.Diagnostic, error)
	Emit(ctx context.Context) ([]EmitFile, error)
}
