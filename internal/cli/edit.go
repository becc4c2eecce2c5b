package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/session"
)

func (c *CLI) normalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Parse and re-serialize a composition",
		Long: `Parse the composition on stdin and write it back in canonical form. Layers
stacked by depth are split, fragmented containers are repaired and symmetry
mirrors are regenerated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(cmd)
			if err != nil {
				return err
			}
			return c.write(cmd, s)
		},
	}
}

func (c *CLI) rotateCommand() *cobra.Command {
	var (
		sel   selection
		mode  string
		delta float64
	)
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the selected layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				return session.Operation{Type: session.TypeLayerRotate, Layers: uuids, Delta: delta, Mode: mode}
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "rotation mode: "+joinNames(engine.RotationModes)+" (default: $COA_ROTATION_MODE)")
	cmd.Flags().Float64VarP(&delta, "delta", "d", 0, "rotation in degrees, clockwise")
	return cmd
}

func (c *CLI) alignCommand() *cobra.Command {
	var (
		sel  selection
		edge string
		to   bool
	)
	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align the selected layers on one edge",
		Long: `Align lines up two or more layers along left, center, right, top, middle or
bottom. With --to, each layer is instead placed on a fixed canvas line
(0.25, 0.5 or 0.75 on the named axis).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				if to {
					return session.Operation{Type: session.TypeLayerPlace, Layers: uuids, Placement: edge}
				}
				return session.Operation{Type: session.TypeLayerAlign, Layers: uuids, Edge: edge}
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&edge, "edge", "e", engine.AlignCenter, "left, center, right, top, middle or bottom")
	cmd.Flags().BoolVar(&to, "to", false, "move to a fixed canvas position instead")
	return cmd
}

func (c *CLI) flipCommand() *cobra.Command {
	var (
		sel  selection
		x, y bool
	)
	cmd := &cobra.Command{
		Use:   "flip",
		Short: "Mirror the selected layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !x && !y {
				return fmt.Errorf("nothing to flip: use --x, --y or both")
			}
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				return session.Operation{Type: session.TypeLayerFlip, Layers: uuids, FlipX: x, FlipY: y}
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&x, "x", false, "flip horizontally")
	cmd.Flags().BoolVar(&y, "y", false, "flip vertically")
	return cmd
}

func (c *CLI) mergeCommand() *cobra.Command {
	var (
		sel   selection
		force bool
	)
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the selected layers into the first one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				return session.Operation{Type: session.TypeLayerMerge, Layers: uuids, Force: force}
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the appearance review")
	return cmd
}

func (c *CLI) splitCommand() *cobra.Command {
	var sel selection
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a multi-instance layer into one layer per instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				return session.Operation{Type: session.TypeLayerSplit, Layers: uuids}
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func (c *CLI) groupCommand() *cobra.Command {
	var (
		sel     selection
		name    string
		ungroup bool
	)
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group the selected layers into a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, &sel, func(uuids []string) session.Operation {
				if ungroup {
					return session.Operation{Type: session.TypeContainerSet, Layers: uuids}
				}
				return session.Operation{Type: session.TypeContainerCreate, Layers: uuids, Name: name}
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "container name")
	cmd.Flags().BoolVar(&ungroup, "ungroup", false, "remove the selected layers from their containers")
	return cmd
}

func (c *CLI) repairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Split containers whose members are not contiguous",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load(cmd)
			if err != nil {
				return err
			}
			res, err := s.Apply(session.Operation{Type: session.TypeContainerRepair})
			if err != nil {
				return err
			}
			for _, sp := range res.Splits {
				c.Logger.Info("split container", "from", sp.OldContainer, "to", sp.NewContainer, "layers", sp.LayerCount)
			}
			return c.write(cmd, s)
		},
	}
}
