// Package embedded models the forest of synthetic files derived from one
// source document and the workspace-wide registry that resolves a generated
// file name back to its owner.
package embedded

import (
	"iter"
	"strings"

	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/teleport"
)

// ScaffoldPrefix marks names that exist only so the generated code compiles.
// Symbols starting with it never reach the user.
const ScaffoldPrefix = "__EMB_"

func IsScaffold(name string) bool {
	return strings.HasPrefix(name, ScaffoldPrefix)
}

// File is one synthetic document derived from a region of a source document.
// A File owns its mapping and teleport tables; both are immutable once the
// composer hands the tree back.
type File struct {
	ID         string
	LanguageID string
	Text       string
	// Capabilities is the union of operations this file takes part in. A
	// feature skips the file entirely when its bit is missing.
	Capabilities mapping.Capabilities
	Map          *mapping.Map
	Teleports    *teleport.Index
	Embeds       []*File

	parent *File
}

func NewFile(id, languageID, text string, capabilities mapping.Capabilities, mappings []mapping.Mapping) *File {
	return &File{
		ID:           id,
		LanguageID:   languageID,
		Text:         text,
		Capabilities: capabilities,
		Map:          mapping.NewMap(mappings),
		Teleports:    &teleport.Index{},
	}
}

// Parent is nil for forest roots.
func (f *File) Parent() *File {
	return f.parent
}

// AddEmbed attaches child below f and returns child.
func (f *File) AddEmbed(child *File) *File {
	child.parent = f
	f.Embeds = append(f.Embeds, child)
	return child
}

func (f *File) Root() *File {
	for f.parent != nil {
		f = f.parent
	}
	return f
}

// ForEachEmbedded walks the tree under root depth first, parents before
// children. Returning false from visit stops the walk.
func ForEachEmbedded(root *File, visit func(*File) bool) bool {
	if root == nil {
		return true
	}
	if !visit(root) {
		return false
	}
	for _, child := range root.Embeds {
		if !ForEachEmbedded(child, visit) {
			return false
		}
	}
	return true
}

// All yields every file of the tree in ForEachEmbedded order.
func All(root *File) iter.Seq[*File] {
	return func(yield func(*File) bool) {
		ForEachEmbedded(root, yield)
	}
}
