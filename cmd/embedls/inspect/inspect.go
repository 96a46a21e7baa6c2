package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/session"
)

type Handler struct {
	opts   *session.Options
	format string
}

func NewInspectCommand(opts *session.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "print the embedded files composed from a source file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&me.format, "format", "f", "text", "output format: text, json, yaml or msgpack")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args[0])
	}

	return cmd
}

type FileDump struct {
	ID           string         `json:"id" yaml:"id" msgpack:"id"`
	Language     string         `json:"language" yaml:"language" msgpack:"language"`
	Capabilities string         `json:"capabilities" yaml:"capabilities" msgpack:"capabilities"`
	Mappings     []MappingDump  `json:"mappings,omitempty" yaml:"mappings,omitempty" msgpack:"mappings,omitempty"`
	Teleports    []TeleportDump `json:"teleports,omitempty" yaml:"teleports,omitempty" msgpack:"teleports,omitempty"`
	Embeds       []FileDump     `json:"embeds,omitempty" yaml:"embeds,omitempty" msgpack:"embeds,omitempty"`
}

type MappingDump struct {
	Source       string `json:"source" yaml:"source" msgpack:"source"`
	Generated    string `json:"generated" yaml:"generated" msgpack:"generated"`
	Capabilities string `json:"capabilities" yaml:"capabilities" msgpack:"capabilities"`
	Anchor       bool   `json:"anchor,omitempty" yaml:"anchor,omitempty" msgpack:"anchor,omitempty"`
	RenameStyle  string `json:"rename_style,omitempty" yaml:"rename_style,omitempty" msgpack:"rename_style,omitempty"`
}

type TeleportDump struct {
	A   string `json:"a" yaml:"a" msgpack:"a"`
	B   string `json:"b" yaml:"b" msgpack:"b"`
	ToB string `json:"to_b" yaml:"to_b" msgpack:"to_b"`
	ToA string `json:"to_a" yaml:"to_a" msgpack:"to_a"`
}

// Dump converts a forest into its printable form.
func Dump(f *embedded.File) FileDump {
	d := FileDump{
		ID:           f.ID,
		Language:     f.LanguageID,
		Capabilities: f.Capabilities.String(),
	}
	for _, m := range f.Map.Mappings() {
		md := MappingDump{
			Source:       m.Source.String(),
			Generated:    m.Generated.String(),
			Capabilities: m.Data.String(),
			Anchor:       m.Anchor,
		}
		if m.RenameStyle != casing.Preserve {
			md.RenameStyle = m.RenameStyle.String()
		}
		d.Mappings = append(d.Mappings, md)
	}
	for _, e := range f.Teleports.Entries() {
		d.Teleports = append(d.Teleports, TeleportDump{
			A:   e.A.String(),
			B:   e.B.String(),
			ToB: e.ToB.String(),
			ToA: e.ToA.String(),
		})
	}
	for _, child := range f.Embeds {
		d.Embeds = append(d.Embeds, Dump(child))
	}
	return d
}

func (me *Handler) Run(ctx context.Context, out io.Writer, file string) error {
	s, err := session.Open(ctx, *me.opts)
	if err != nil {
		return err
	}
	doc, ok := s.Project.Document(file)
	if !ok {
		return errors.Errorf("%s is not part of the project", file)
	}
	if doc.Err != nil {
		return errors.Errorf("composing %s: %w", file, doc.Err)
	}
	if doc.Root == nil {
		_, err := fmt.Fprintf(out, "%s is not managed by any composer\n", file)
		return err
	}

	dump := Dump(doc.Root)

	var data []byte
	switch me.format {
	case "text":
		var b strings.Builder
		writeText(&b, dump, 0)
		data = []byte(b.String())
	case "json":
		data, err = json.MarshalIndent(dump, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(dump)
	case "msgpack":
		data, err = msgpack.Marshal(dump)
	default:
		return errors.Errorf("unknown format %q", me.format)
	}
	if err != nil {
		return errors.Errorf("encoding %s: %w", me.format, err)
	}

	_, err = out.Write(data)
	return err
}

func writeText(b *strings.Builder, d FileDump, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s (%s) [%s]\n", indent, d.ID, d.Language, d.Capabilities)
	for _, m := range d.Mappings {
		kind := "map"
		if m.Anchor {
			kind = "anchor"
		}
		fmt.Fprintf(b, "%s  %s %s -> %s %s", indent, kind, m.Source, m.Generated, m.Capabilities)
		if m.RenameStyle != "" {
			fmt.Fprintf(b, " rename=%s", m.RenameStyle)
		}
		b.WriteString("\n")
	}
	for _, t := range d.Teleports {
		fmt.Fprintf(b, "%s  teleport %s <-> %s %s/%s\n", indent, t.A, t.B, t.ToB, t.ToA)
	}
	for _, child := range d.Embeds {
		writeText(b, child, depth+1)
	}
}
