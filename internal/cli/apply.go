package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/session"
)

func (c *CLI) applyCommand() *cobra.Command {
	var (
		stats   bool
		results string
	)
	cmd := &cobra.Command{
		Use:   "apply [ops.json]",
		Short: "Apply a JSON list of operations",
		Long: `Apply reads the composition from stdin and the operations from ops.json, a
single operation object or an array of them. Operations are applied in order
through an editing session and stop at the first failure.

Layer UUIDs are minted fresh on every parse, so "layers" and "target" entries
may be written as stack indices ("0" is the bottom layer). Indices refer to
the stack as it was before the first operation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read operations: %w", err)
			}
			ops, err := session.DecodeOperations(data)
			if err != nil {
				return fmt.Errorf("decode operations: %w", err)
			}
			s, err := c.load(cmd)
			if err != nil {
				return err
			}
			ops, err = resolveIndices(s, ops)
			if err != nil {
				return err
			}

			res, applyErr := s.ApplyAll(ops)
			if results != "" {
				if err := writeResults(results, res); err != nil {
					return err
				}
			}
			if stats {
				c.logStats()
			}
			if applyErr != nil {
				return applyErr
			}
			c.Logger.Debug("applied operations", "count", len(res), "seq", s.Seq())
			return c.write(cmd, s)
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "log mutation counters when done")
	cmd.Flags().StringVar(&results, "results", "", "write per-operation results as JSON to this file")
	return cmd
}

func writeResults(path string, res []session.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// logStats reports the mutation counters gathered during this run.
func (c *CLI) logStats() {
	families, err := c.Registry.Gather()
	if err != nil {
		c.Logger.Warn("gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var op string
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "op" {
					op = lp.GetValue()
				}
			}
			c.Logger.Info(mf.GetName(), "op", op, "count", m.GetCounter().GetValue())
		}
	}
}

// resolveIndices replaces decimal layer references with the UUID at that
// index of the loaded stack.
func resolveIndices(s *session.Session, ops []session.Operation) ([]session.Operation, error) {
	var uuids []string
	_ = s.View(func(c *engine.Composition) error {
		uuids = c.UUIDs()
		return nil
	})
	ref := func(v string) (string, error) {
		i, err := strconv.Atoi(v)
		if err != nil {
			return v, nil
		}
		if i < 0 || i >= len(uuids) {
			return "", fmt.Errorf("layer index %d out of range [0, %d)", i, len(uuids))
		}
		return uuids[i], nil
	}

	var walk func(ops []session.Operation) ([]session.Operation, error)
	walk = func(ops []session.Operation) ([]session.Operation, error) {
		out := make([]session.Operation, len(ops))
		for n, op := range ops {
			layers := make([]string, len(op.Layers))
			for k, v := range op.Layers {
				id, err := ref(v)
				if err != nil {
					return nil, fmt.Errorf("operation %d: %w", n, err)
				}
				layers[k] = id
			}
			op.Layers = layers
			if op.Target != "" {
				id, err := ref(op.Target)
				if err != nil {
					return nil, fmt.Errorf("operation %d target: %w", n, err)
				}
				op.Target = id
			}
			if len(op.Operations) > 0 {
				nested, err := walk(op.Operations)
				if err != nil {
					return nil, fmt.Errorf("operation %d: %w", n, err)
				}
				op.Operations = nested
			}
			out[n] = op
		}
		return out, nil
	}
	return walk(ops)
}
