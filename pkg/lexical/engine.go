// Package lexical is a name-based typescript engine. It parses scripts with
// tree-sitter and resolves symbols by spelling only: a definition is the
// first declaration of a name, references are every token spelled the same.
// That is enough to drive the workspace end to end without a type checker.
package lexical

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/langsvc"
)

const LanguageID = "typescript"

var ErrUnknownFile = errors.Base("unknown script file")

// Engine is not safe for concurrent use.
type Engine struct {
	host   langsvc.Host
	parser *sitter.Parser
	files  embedded.VersionedMap[string, *parsedFile]
}

var _ langsvc.Engine = (*Engine)(nil)

func New(host langsvc.Host) *Engine {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	return &Engine{host: host, parser: parser}
}

func (e *Engine) LanguageID() string {
	return LanguageID
}

// file returns the parsed form of name, reparsing only when the host reports
// a new script version or different text.
func (e *Engine) file(ctx context.Context, name string) (*parsedFile, error) {
	text, ok := e.host.ScriptSnapshot(name)
	if !ok {
		return nil, errors.Errorf("%s: %w", name, ErrUnknownFile)
	}
	version := e.host.ScriptVersion(name)

	parse := func() (*parsedFile, error) {
		return e.parse(ctx, name, text)
	}
	pf, err := e.files.Load(name, version, parse)
	if err != nil {
		return nil, err
	}
	if pf.text != text {
		e.files.Forget(name)
		return e.files.Load(name, version, parse)
	}
	return pf, nil
}

// scripts returns every script file of the project in host order.
func (e *Engine) scripts(ctx context.Context) ([]*parsedFile, error) {
	names := e.host.ScriptFileNames()
	out := make([]*parsedFile, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pf, err := e.file(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, pf)
	}
	return out, nil
}
