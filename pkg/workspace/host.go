package workspace

import (
	"maps"
	"slices"

	"github.com/spf13/afero"
)

// ScriptFileNames lists what the engine sees as the project: unmanaged
// documents under their own names and, for managed ones, the embedded files
// in a script language. Managed source names are hidden.
func (p *Project) ScriptFileNames() []string {
	var out []string
	for _, name := range slices.Sorted(maps.Keys(p.docs)) {
		doc := p.docs[name]
		if !doc.Managed() {
			out = append(out, name)
			continue
		}
		for f := range doc.Files() {
			if p.IsScriptLanguage(f.LanguageID) {
				out = append(out, f.ID)
			}
		}
	}
	return out
}

// ScriptSnapshot returns the text of a generated file, an open document, or
// a file on disk, in that order.
func (p *Project) ScriptSnapshot(name string) (string, bool) {
	if entry, ok := p.registry.Lookup(name); ok {
		return entry.File.Text, true
	}
	if doc, ok := p.docs[name]; ok {
		return doc.Text, true
	}
	b, err := afero.ReadFile(p.fs, name)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// ScriptVersion is the version of the document name belongs to, or 0 for
// files that were never opened.
func (p *Project) ScriptVersion(name string) int {
	if entry, ok := p.registry.Lookup(name); ok {
		if doc, ok := p.docs[entry.SourceFile]; ok {
			return doc.Version
		}
	}
	if doc, ok := p.docs[name]; ok {
		return doc.Version
	}
	return 0
}

func (p *Project) FileExists(name string) bool {
	if _, ok := p.registry.Lookup(name); ok {
		return true
	}
	if _, ok := p.docs[name]; ok {
		return true
	}
	ok, err := afero.Exists(p.fs, name)
	return err == nil && ok
}

func (p *Project) ProjectVersion() int {
	return p.version
}
