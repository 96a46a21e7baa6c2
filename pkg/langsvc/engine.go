// Package langsvc wraps a language engine that only understands generated
// files so that every query can be asked, and answered, in source
// coordinates.
package langsvc

import (
	"context"
	"slices"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/embedded"
)

var ErrNoProgram = errors.Base("engine has no program")

// Engine is the query surface of a language engine. Offsets and spans are
// byte offsets into the file text the engine was given.
type Engine interface {
	LanguageID() string

	SyntacticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error)
	SemanticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error)

	Definition(ctx context.Context, file string, offset int) ([]Location, error)
	TypeDefinition(ctx context.Context, file string, offset int) ([]Location, error)
	Implementation(ctx context.Context, file string, offset int) ([]Location, error)
	References(ctx context.Context, file string, offset int) ([]Location, error)
	RenameLocations(ctx context.Context, file string, offset int) ([]Location, error)

	Completions(ctx context.Context, file string, offset int) (*CompletionList, error)
	Hover(ctx context.Context, file string, offset int) (*Hover, error)
	FoldingRanges(ctx context.Context, file string) ([]FoldingRange, error)
	Format(ctx context.Context, file string, opts FormatOptions) ([]TextEdit, error)
	OrganizeImports(ctx context.Context, file string) ([]FileEdits, error)
	FileRenameEdits(ctx context.Context, oldName, newName string) ([]FileEdits, error)

	Program(ctx context.Context) (Program, error)
}

// Host is what an engine reads the project through. The workspace implements
// it so that generated files show up next to real ones.
type Host interface {
	ScriptFileNames() []string
	ScriptSnapshot(name string) (string, bool)
	ScriptVersion(name string) int
	FileExists(name string) bool
	ProjectVersion() int
}

// Workspace is the view of the project the decorator translates through.
type Workspace interface {
	Lookup(generated string) (embedded.Entry, bool)
	Document(source string) (*embedded.Document, bool)
	// HasSourceFile reports whether name is still part of the project.
	HasSourceFile(name string) bool
	// IsScriptLanguage reports whether embeds of languageID are handed to the
	// wrapped engine as scripts.
	IsScriptLanguage(languageID string) bool
	Version() int
}

// Services maps language ids to the engines that serve them. It is built
// once at startup and shared by reference.
type Services struct {
	engines map[string]Engine
}

func NewServices(engines ...Engine) *Services {
	s := &Services{engines: map[string]Engine{}}
	for _, e := range engines {
		s.Register(e)
	}
	return s
}

// Register replaces any engine already registered for the same language.
func (s *Services) Register(e Engine) {
	s.engines[e.LanguageID()] = e
}

func (s *Services) Engine(languageID string) (Engine, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.engines[languageID]
	return e, ok
}

func (s *Services) Languages() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.engines))
	for id := range s.engines {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
