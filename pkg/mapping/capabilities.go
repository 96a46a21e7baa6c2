package mapping

import "strings"

// Capabilities is the set of editor operations a mapped span takes part in.
type Capabilities uint16

const (
	Diagnostics Capabilities = 1 << iota
	Completion
	// Definition also gates type definition and implementation lookups.
	Definition
	References
	Rename
	Hover
	Folding
	Format
	CodeActions
	SemanticTokens
)

const (
	None       Capabilities = 0
	Navigation              = Definition | References | Rename
	All                     = Diagnostics | Completion | Navigation | Hover | Folding | Format | CodeActions | SemanticTokens
)

var capabilityNames = []struct {
	c    Capabilities
	name string
}{
	{Diagnostics, "diagnostics"},
	{Completion, "completion"},
	{Definition, "definition"},
	{References, "references"},
	{Rename, "rename"},
	{Hover, "hover"},
	{Folding, "folding"},
	{Format, "format"},
	{CodeActions, "code-actions"},
	{SemanticTokens, "semantic-tokens"},
}

// Has reports whether every capability in want is set.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

func (c Capabilities) Without(drop Capabilities) Capabilities {
	return c &^ drop
}

func (c Capabilities) String() string {
	if c == None {
		return "none"
	}
	if c == All {
		return "all"
	}
	var parts []string
	for _, n := range capabilityNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Filter decides whether a mapping participates in one translation.
// A nil Filter accepts everything.
type Filter func(Capabilities) bool

func Require(want Capabilities) Filter {
	return func(c Capabilities) bool { return c.Has(want) }
}

var (
	ForDiagnostics    = Require(Diagnostics)
	ForCompletion     = Require(Completion)
	ForDefinition     = Require(Definition)
	ForReferences     = Require(References)
	ForRename         = Require(Rename)
	ForHover          = Require(Hover)
	ForFolding        = Require(Folding)
	ForFormat         = Require(Format)
	ForCodeActions    = Require(CodeActions)
	ForSemanticTokens = Require(SemanticTokens)
)

func (f Filter) accepts(c Capabilities) bool {
	return f == nil || f(c)
}
