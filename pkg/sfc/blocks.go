package sfc

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/position"
)

// Block is one top-level section of a component file.
type Block struct {
	Tag   string
	Attrs map[string]string
	// Content is the span between the opening and closing tags.
	Content position.Span
}

var (
	blockTags    = []string{"script", "template", "style"}
	attrPattern  = regexp.MustCompile(`([A-Za-z_:@][\w:.-]*)\s*=\s*"([^"]*)"`)
	ErrUnclosed  = errors.Base("unclosed block")
	ErrDuplicate = errors.Base("duplicate block")
)

// ParseBlocks splits text into its script, template and style blocks. Text
// outside blocks is ignored. Script and style content is raw text ending at
// the first closing tag; template blocks may contain nested template tags.
func ParseBlocks(text string) ([]Block, error) {
	var (
		blocks []Block
		seen   = map[string]bool{}
	)
	for i := 0; i < len(text); {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			break
		}
		lt += i

		tag := openingTag(text[lt+1:])
		if tag == "" {
			i = lt + 1
			continue
		}
		gt := strings.IndexByte(text[lt:], '>')
		if gt < 0 {
			return nil, errors.Errorf("<%s> at offset %d: %w", tag, lt, ErrUnclosed)
		}
		gt += lt

		closing := "</" + tag + ">"
		end := closingTag(text, gt+1, tag)
		if end < 0 {
			return nil, errors.Errorf("<%s> at offset %d: %w", tag, lt, ErrUnclosed)
		}

		if tag != "style" {
			if seen[tag] {
				return nil, errors.Errorf("<%s> at offset %d: %w", tag, lt, ErrDuplicate)
			}
			seen[tag] = true
		}

		attrs := map[string]string{}
		for _, m := range attrPattern.FindAllStringSubmatch(text[lt+1+len(tag):gt], -1) {
			attrs[m[1]] = m[2]
		}

		blocks = append(blocks, Block{
			Tag:     tag,
			Attrs:   attrs,
			Content: position.NewSpan(gt+1, end),
		})
		i = end + len(closing)
	}
	return blocks, nil
}

// closingTag returns the offset of the tag closing a block whose content
// starts at from, or -1.
func closingTag(text string, from int, tag string) int {
	closing := "</" + tag + ">"
	if tag != "template" {
		end := strings.Index(text[from:], closing)
		if end < 0 {
			return -1
		}
		return from + end
	}

	depth := 0
	for i := from; i < len(text); {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			return -1
		}
		lt += i
		i = lt + 1

		switch {
		case strings.HasPrefix(text[lt:], closing):
			if depth == 0 {
				return lt
			}
			depth--
			i = lt + len(closing)
		case openingTag(text[lt+1:]) == tag:
			gt := strings.IndexByte(text[lt:], '>')
			if gt < 0 {
				return -1
			}
			// <template/> opens nothing
			if text[lt+gt-1] != '/' {
				depth++
			}
			i = lt + gt + 1
		}
	}
	return -1
}

func openingTag(rest string) string {
	for _, tag := range blockTags {
		if !strings.HasPrefix(rest, tag) {
			continue
		}
		if len(rest) == len(tag) {
			return tag
		}
		switch rest[len(tag)] {
		case '>', ' ', '\t', '\n', '\r':
			return tag
		}
	}
	return ""
}
