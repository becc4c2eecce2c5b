package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
)

// Report is the inspect output.
type Report struct {
	Pattern     string        `json:"pattern" yaml:"pattern"`
	Colors      []string      `json:"colors" yaml:"colors"`
	Fingerprint string        `json:"fingerprint" yaml:"fingerprint"`
	Containers  []string      `json:"containers,omitempty" yaml:"containers,omitempty"`
	Layers      []LayerReport `json:"layers" yaml:"layers"`
}

// LayerReport summarizes one layer.
type LayerReport struct {
	Index     int        `json:"index" yaml:"index"`
	UUID      string     `json:"uuid" yaml:"uuid"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Texture   string     `json:"texture" yaml:"texture"`
	Colors    []string   `json:"colors" yaml:"colors,flow"`
	Instances int        `json:"instances" yaml:"instances"`
	Position  [2]float64 `json:"position" yaml:"position,flow"`
	Visible   bool       `json:"visible" yaml:"visible"`
	Container string     `json:"container,omitempty" yaml:"container,omitempty"`
	Symmetry  string     `json:"symmetry,omitempty" yaml:"symmetry,omitempty"`
}

func (c *CLI) inspectCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(cmd)
			if err != nil {
				return err
			}
			fp, err := s.ContentFingerprint()
			if err != nil {
				return err
			}
			var r Report
			if err := s.View(func(comp *engine.Composition) error {
				r, err = buildReport(comp)
				return err
			}); err != nil {
				return err
			}
			r.Fingerprint = fp.String()
			return writeReport(cmd.OutOrStdout(), r, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml, json")
	return cmd
}

func buildReport(comp *engine.Composition) (Report, error) {
	r := Report{Pattern: comp.Pattern(), Containers: comp.Containers()}
	for slot := 1; slot <= 3; slot++ {
		col, err := comp.BaseColor(slot)
		if err != nil {
			return r, err
		}
		r.Colors = append(r.Colors, colorName(col))
	}
	for i, id := range comp.UUIDs() {
		l, err := comp.Layer(id)
		if err != nil {
			return r, err
		}
		pos, err := comp.LayerPosition(id)
		if err != nil {
			return r, err
		}
		lr := LayerReport{
			Index:     i,
			UUID:      id,
			Name:      l.Name,
			Texture:   l.Filename,
			Instances: l.InstanceCount(),
			Position:  [2]float64{pos.X, pos.Y},
			Visible:   l.Visible,
			Container: l.ContainerUUID,
		}
		for _, col := range []document.Color{l.Color1, l.Color2, l.Color3}[:l.Colors] {
			lr.Colors = append(lr.Colors, colorName(col))
		}
		if l.Symmetry.Active() {
			lr.Symmetry = string(l.Symmetry.Type)
		}
		r.Layers = append(r.Layers, lr)
	}
	return r, nil
}

func colorName(col document.Color) string {
	if col.Name != "" {
		return col.Name
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", col.R, col.G, col.B)
}

func writeReport(w io.Writer, r Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
	}
}

func writeText(w io.Writer, r Report) error {
	fmt.Fprintf(w, "pattern  %s\n", r.Pattern)
	fmt.Fprintf(w, "colors   %s %s %s\n", r.Colors[0], r.Colors[1], r.Colors[2])
	fmt.Fprintf(w, "blake3   %s\n\n", r.Fingerprint)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEXTURE\tNAME\tINST\tPOSITION\tSYMMETRY\tCONTAINER")
	for _, l := range r.Layers {
		container := "-"
		if l.Container != "" {
			container = l.Container
		}
		sym := "-"
		if l.Symmetry != "" {
			sym = l.Symmetry
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3f,%.3f\t%s\t%s\n",
			l.Index, l.Texture, l.Name, l.Instances, l.Position[0], l.Position[1], sym, container)
	}
	return tw.Flush()
}

func (c *CLI) fingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the BLAKE3 hash of a composition",
		Long: `Print the BLAKE3 hash of the composition's canonical encoding. Layer
identities are left out, so the same text always hashes the same.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(cmd)
			if err != nil {
				return err
			}
			fp, err := s.ContentFingerprint()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), fp)
			return err
		},
	}
}

func (c *CLI) sampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print a sample composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), codec.Sample)
			return err
		},
	}
}
