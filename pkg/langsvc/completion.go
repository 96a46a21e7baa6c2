package langsvc

import (
	"context"
	"slices"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/position"
)

// Completions merges the completion lists of every generated position the
// source offset maps to, anchors included. Items are merged by name, first
// one wins, and scaffolding names are never returned.
func (d *Decorator) Completions(ctx context.Context, file string, offset int) (*CompletionList, error) {
	targets, managed := d.targets(file, mapping.Completion)
	if !managed {
		list, err := d.Engine.Completions(ctx, file, offset)
		if err != nil {
			return nil, errors.Errorf("getting completions for %s: %w", file, err)
		}
		return filterScaffolding(list), nil
	}

	merged := &CompletionList{}
	seen := map[string]struct{}{}
	for _, t := range targets {
		for genOffset, m := range t.file.Map.ToGeneratedOffsets(offset, mapping.ForCompletion) {
			if err := ctx.Err(); err != nil {
				return nil, errors.Errorf("getting completions for %s: %w", file, err)
			}
			list, err := t.engine.Completions(ctx, t.file.ID, genOffset)
			if err != nil {
				return nil, errors.Errorf("getting completions for %s:%d: %w", t.file.ID, genOffset, err)
			}
			if list == nil {
				continue
			}
			merged.Incomplete = merged.Incomplete || list.Incomplete
			for _, item := range list.Items {
				if embedded.IsScaffold(item.Name) {
					continue
				}
				if _, dup := seen[item.Name]; dup {
					continue
				}
				seen[item.Name] = struct{}{}
				item.Replace = translateReplace(t.file, m, item.Replace)
				merged.Items = append(merged.Items, item)
			}
		}
	}
	return merged, nil
}

// translateReplace maps a replacement span back to the source. Anchors have
// no source width, so the replacement collapses onto the anchor. Spans that
// cannot be mapped fall back to the editor's default word range.
func translateReplace(f *embedded.File, m mapping.Mapping, span *position.Span) *position.Span {
	if span == nil {
		return nil
	}
	if m.Anchor {
		s := m.Source
		return &s
	}
	s, _, ok := f.Map.ToSourceSpan(*span, mapping.ForCompletion)
	if !ok {
		return nil
	}
	return &s
}

func filterScaffolding(list *CompletionList) *CompletionList {
	if list == nil {
		return nil
	}
	out := *list
	out.Items = slices.DeleteFunc(slices.Clone(list.Items), func(item CompletionItem) bool {
		return embedded.IsScaffold(item.Name)
	})
	return &out
}

// Hover returns the first hover any embedded file produces at offset. A hover
// span that cannot be mapped back collapses to the queried offset.
func (d *Decorator) Hover(ctx context.Context, file string, offset int) (*Hover, error) {
	targets, managed := d.targets(file, mapping.Hover)
	if !managed {
		return d.Engine.Hover(ctx, file, offset)
	}

	for _, t := range targets {
		for genOffset := range t.file.Map.ToGeneratedOffsets(offset, mapping.ForHover) {
			if err := ctx.Err(); err != nil {
				return nil, errors.Errorf("getting hover for %s: %w", file, err)
			}
			h, err := t.engine.Hover(ctx, t.file.ID, genOffset)
			if err != nil {
				return nil, errors.Errorf("getting hover for %s:%d: %w", t.file.ID, genOffset, err)
			}
			if h == nil {
				continue
			}
			out := *h
			span, _, ok := t.file.Map.ToSourceSpan(h.Span, mapping.ForHover)
			if !ok {
				span = position.NewSpan(offset, offset)
			}
			out.Span = span
			return &out, nil
		}
	}
	return nil, nil
}

// FoldingRanges collects folding ranges from every embedded file and returns
// the mappable ones sorted by start.
func (d *Decorator) FoldingRanges(ctx context.Context, file string) ([]FoldingRange, error) {
	targets, managed := d.targets(file, mapping.Folding)
	if !managed {
		return d.Engine.FoldingRanges(ctx, file)
	}

	var out []FoldingRange
	seen := map[position.Span]struct{}{}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("getting folding ranges for %s: %w", file, err)
		}
		ranges, err := t.engine.FoldingRanges(ctx, t.file.ID)
		if err != nil {
			return nil, errors.Errorf("getting folding ranges for %s: %w", t.file.ID, err)
		}
		for _, r := range ranges {
			span, _, ok := t.file.Map.ToSourceSpan(r.Span, mapping.ForFolding)
			if !ok {
				continue
			}
			if _, dup := seen[span]; dup {
				continue
			}
			seen[span] = struct{}{}
			out = append(out, FoldingRange{Span: span, Kind: r.Kind})
		}
	}
	slices.SortStableFunc(out, func(a, b FoldingRange) int {
		return a.Span.Start - b.Span.Start
	})
	return out, nil
}
