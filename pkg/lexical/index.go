package lexical

import (
	"context"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/position"
)

type symbolKind string

const (
	kindVariable  symbolKind = "variable"
	kindFunction  symbolKind = "function"
	kindClass     symbolKind = "class"
	kindType      symbolKind = "type"
	kindParameter symbolKind = "parameter"
	kindImport    symbolKind = "import"
	kindProperty  symbolKind = "property"
	kindMethod    symbolKind = "method"
	kindKey       symbolKind = "key"
)

type symbol struct {
	name     string
	span     position.Span
	kind     symbolKind
	decl     bool
	exported bool
}

type importDecl struct {
	span position.Span
	// spec is the module specifier without quotes
	spec     string
	specSpan position.Span
}

type parsedFile struct {
	name    string
	text    string
	lines   *position.LineIndex
	symbols []symbol
	syntax  []diagnostic.Diagnostic
	folds   []langsvc.FoldingRange
	imports []importDecl
}

func (e *Engine) parse(ctx context.Context, name, text string) (*parsedFile, error) {
	tree, err := e.parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", name, err)
	}
	defer tree.Close()

	pf := &parsedFile{name: name, text: text, lines: position.NewLineIndex(text)}
	if err := pf.walk(tree.RootNode(), 0); err != nil {
		return nil, errors.Errorf("indexing %s: %w", name, err)
	}
	return pf, nil
}

func nodeSpan(n *sitter.Node) (position.Span, error) {
	start, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return position.Span{}, err
	}
	end, err := safecast.Conv[int](n.EndByte())
	if err != nil {
		return position.Span{}, err
	}
	return position.NewSpan(start, end), nil
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func (pf *parsedFile) walk(n *sitter.Node, depth int) error {
	span, err := nodeSpan(n)
	if err != nil {
		return err
	}

	switch {
	case n.IsMissing():
		pf.syntax = append(pf.syntax, diagnostic.Diagnostic{
			File:     pf.name,
			Span:     position.NewSpan(span.Start, span.Start),
			Message:  fmt.Sprintf("'%s' expected.", n.Type()),
			Severity: diagnostic.SeverityError,
			Code:     "1005",
			Source:   "lexical",
		})
		return nil
	case n.Type() == "ERROR":
		pf.syntax = append(pf.syntax, diagnostic.Diagnostic{
			File:     pf.name,
			Span:     span,
			Message:  "Syntax error.",
			Severity: diagnostic.SeverityError,
			Code:     "1109",
			Source:   "lexical",
		})
		return nil
	}

	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "type_identifier":
		pf.symbols = append(pf.symbols, pf.classify(n, span))
	case "string_fragment":
		// only string keys of index expressions behave like names
		if str := n.Parent(); str != nil && str.Parent() != nil && str.Parent().Type() == "subscript_expression" {
			pf.symbols = append(pf.symbols, symbol{name: pf.text[span.Start:span.End], span: span, kind: kindKey})
		}
	case "import_statement":
		if depth == 1 {
			pf.addImport(n, span)
		}
	case "statement_block", "class_body", "object", "object_type", "array", "template_string", "enum_body", "interface_body":
		pf.fold(span, "region")
	case "comment":
		pf.fold(span, "comment")
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if err := pf.walk(n.Child(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// classify decides whether an identifier declares its name and what it
// names, from its parent node.
func (pf *parsedFile) classify(n *sitter.Node, span position.Span) symbol {
	sym := symbol{name: pf.text[span.Start:span.End], span: span, kind: kindVariable}
	if n.Type() == "property_identifier" {
		sym.kind = kindProperty
	}

	parent := n.Parent()
	if parent == nil {
		return sym
	}
	isName := sameNode(parent.ChildByFieldName("name"), n)

	switch parent.Type() {
	case "variable_declarator":
		sym.decl = isName
	case "function_declaration", "generator_function_declaration", "function":
		sym.decl, sym.kind = isName, kindFunction
	case "class_declaration", "class":
		sym.decl, sym.kind = isName, kindClass
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		sym.decl, sym.kind = isName, kindType
	case "method_definition", "method_signature":
		sym.decl, sym.kind = isName, kindMethod
	case "public_field_definition", "property_signature":
		sym.decl, sym.kind = isName, kindProperty
	case "required_parameter", "optional_parameter":
		sym.decl, sym.kind = sameNode(parent.ChildByFieldName("pattern"), n), kindParameter
	case "import_specifier":
		alias := parent.ChildByFieldName("alias")
		sym.decl = alias == nil || sameNode(alias, n)
		sym.kind = kindImport
	case "import_clause", "namespace_import":
		sym.decl, sym.kind = true, kindImport
	}

	if sym.decl {
		sym.exported = exported(parent)
	}
	if !sym.decl && n.Type() == "type_identifier" {
		sym.kind = kindType
	}
	return sym
}

func exported(n *sitter.Node) bool {
	for p := n; p != nil; p = p.Parent() {
		switch p.Type() {
		case "export_statement":
			return true
		case "statement_block", "program":
			return false
		}
	}
	return false
}

func (pf *parsedFile) addImport(n *sitter.Node, span position.Span) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	imp := importDecl{span: span}
	for i := 0; i < int(src.NamedChildCount()); i++ {
		frag := src.NamedChild(i)
		if frag.Type() != "string_fragment" {
			continue
		}
		fs, err := nodeSpan(frag)
		if err != nil {
			return
		}
		imp.spec = pf.text[fs.Start:fs.End]
		imp.specSpan = fs
	}
	pf.imports = append(pf.imports, imp)
}

func (pf *parsedFile) fold(span position.Span, kind string) {
	if pf.lines.Place(span.Start).Line == pf.lines.Place(span.End).Line {
		return
	}
	pf.folds = append(pf.folds, langsvc.FoldingRange{Span: span, Kind: kind})
}

// symbolAt returns the symbol touching offset. The end is inclusive so a
// cursor right after a name still finds it.
func (pf *parsedFile) symbolAt(offset int) (symbol, bool) {
	for _, s := range pf.symbols {
		if s.span.Contains(offset) {
			return s, true
		}
	}
	return symbol{}, false
}
