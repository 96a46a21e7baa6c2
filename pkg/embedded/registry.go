package embedded

import (
	"maps"
	"slices"
)

// Entry resolves a generated file name to its owner.
type Entry struct {
	SourceFile string
	File       *File
}

// Registry indexes every embedded file in the workspace by its generated
// name. It only holds lookups: documents own their forests.
type Registry struct {
	byName   map[string]Entry
	bySource map[string][]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName:   map[string]Entry{},
		bySource: map[string][]string{},
	}
}

// Replace drops every entry of sourceFile and indexes the tree under root.
// A nil root leaves sourceFile with no entries.
func (r *Registry) Replace(sourceFile string, root *File) {
	fresh := map[string]Entry{}
	for f := range All(root) {
		fresh[f.ID] = Entry{SourceFile: sourceFile, File: f}
	}

	r.Remove(sourceFile)
	if len(fresh) == 0 {
		return
	}
	names := slices.Sorted(maps.Keys(fresh))
	for _, name := range names {
		r.byName[name] = fresh[name]
	}
	r.bySource[sourceFile] = names
}

func (r *Registry) Remove(sourceFile string) {
	for _, name := range r.bySource[sourceFile] {
		if e, ok := r.byName[name]; ok && e.SourceFile == sourceFile {
			delete(r.byName, name)
		}
	}
	delete(r.bySource, sourceFile)
}

func (r *Registry) Lookup(generated string) (Entry, bool) {
	e, ok := r.byName[generated]
	return e, ok
}

// Names returns the generated names owned by sourceFile, sorted.
func (r *Registry) Names(sourceFile string) []string {
	return r.bySource[sourceFile]
}

func (r *Registry) Len() int {
	return len(r.byName)
}
