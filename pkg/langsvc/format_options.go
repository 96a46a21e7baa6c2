package langsvc

import (
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"gitlab.com/tozd/go/errors"
)

func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		TabSize:      2,
		InsertSpaces: true,
	}
}

// FormatOptionsForFile resolves the .editorconfig sections that apply to
// path on the local disk, starting from the defaults.
func FormatOptionsForFile(path string) (FormatOptions, error) {
	opts := DefaultFormatOptions()

	def, err := editorconfig.GetDefinitionForFilename(path)
	if err != nil {
		return opts, errors.Errorf("reading editorconfig for %s: %w", path, err)
	}

	switch def.IndentStyle {
	case editorconfig.IndentStyleTab:
		opts.InsertSpaces = false
	case editorconfig.IndentStyleSpaces:
		opts.InsertSpaces = true
	}
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		opts.TabSize = n
	} else if def.TabWidth > 0 {
		opts.TabSize = def.TabWidth
	}
	if def.TrimTrailingWhitespace != nil {
		opts.TrimTrailingWhitespace = *def.TrimTrailingWhitespace
	}
	if def.InsertFinalNewline != nil {
		opts.InsertFinalNewline = *def.InsertFinalNewline
	}
	return opts, nil
}
