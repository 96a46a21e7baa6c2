package embedded

import (
	"context"
	"iter"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Composer turns one source document into a forest of embedded files.
type Composer interface {
	Name() string
	// Create returns a nil root when the composer does not own fileName.
	Create(ctx context.Context, fileName, text string) (*File, error)
	// Update may patch or rebuild, but must return a complete tree.
	Update(ctx context.Context, existing *File, text string) (*File, error)
}

// Document is a source file together with the forest derived from it.
type Document struct {
	FileName string
	Text     string
	Version  int
	Root     *File
	// Composer is the composer that owns the document, nil when none does.
	Composer Composer
	// Err holds the last composer failure. The forest is empty while it is
	// set.
	Err error
}

// Managed reports whether a composer owns the document, even when its last
// build failed.
func (d *Document) Managed() bool {
	return d != nil && d.Composer != nil
}

func (d *Document) Files() iter.Seq[*File] {
	if d == nil {
		return All(nil)
	}
	return All(d.Root)
}

// BuildForest offers the document to each composer in turn. The first one to
// return a root owns it. A composer error makes that composer the owner with
// an empty forest so the next edit retries it.
func BuildForest(ctx context.Context, composers []Composer, fileName, text string) *Document {
	doc := &Document{FileName: fileName, Text: text, Version: 1}
	for _, c := range composers {
		root, err := c.Create(ctx, fileName, text)
		if err != nil {
			doc.Composer = c
			doc.Err = errors.Errorf("composing %s with %s: %w", fileName, c.Name(), err)
			logFailure(ctx, doc)
			return doc
		}
		if root != nil {
			doc.Composer = c
			doc.Root = root
			zerolog.Ctx(ctx).Debug().
				Str("file", fileName).
				Str("composer", c.Name()).
				Int("embeds", count(root)).
				Msg("built forest")
			return doc
		}
	}
	return doc
}

// Rebuild returns a new snapshot of doc for text. The owning composer is
// asked to update its previous tree; documents without an owner are offered
// to every composer again.
func Rebuild(ctx context.Context, composers []Composer, doc *Document, text string) *Document {
	if doc == nil {
		return BuildForest(ctx, composers, "", text)
	}
	if doc.Composer == nil {
		next := BuildForest(ctx, composers, doc.FileName, text)
		next.Version = doc.Version + 1
		return next
	}

	next := &Document{FileName: doc.FileName, Text: text, Version: doc.Version + 1, Composer: doc.Composer}

	var (
		root *File
		err  error
	)
	if doc.Root == nil {
		root, err = doc.Composer.Create(ctx, doc.FileName, text)
	} else {
		root, err = doc.Composer.Update(ctx, doc.Root, text)
	}
	if err != nil {
		next.Err = errors.Errorf("recomposing %s with %s: %w", doc.FileName, doc.Composer.Name(), err)
		logFailure(ctx, next)
		return next
	}
	next.Root = root

	zerolog.Ctx(ctx).Debug().
		Str("file", doc.FileName).
		Str("composer", doc.Composer.Name()).
		Int("version", next.Version).
		Int("embeds", count(root)).
		Msg("rebuilt forest")

	return next
}

func logFailure(ctx context.Context, doc *Document) {
	zerolog.Ctx(ctx).Warn().
		Err(doc.Err).
		Str("file", doc.FileName).
		Msg("composer failed, leaving forest empty until the next edit")
}

func count(root *File) int {
	n := 0
	for range All(root) {
		n++
	}
	return n
}
