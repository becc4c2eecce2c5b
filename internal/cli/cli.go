// Package cli implements the coa command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/config"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/observe"
	"github.com/inamate/heraldry/internal/session"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	// Registry collects mutation counters for the current invocation.
	Registry *prometheus.Registry
}

// New creates a new CLI instance. A nil config uses the built-in defaults.
func New(w io.Writer, level log.Level, cfg *config.Config) *CLI {
	if cfg == nil {
		cfg = &config.Config{
			LogLevel:     "info",
			HistoryLimit: 100,
			PasteOffset:  session.DefaultPasteOffset,
			RotationMode: string(engine.ModeAuto),
		}
	}
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "coa",
		Short: "coa edits coat of arms compositions",
		Long: `coa reads a coat of arms in the game's brace format from stdin, applies one
editing operation and writes the result to stdout.`,
		SilenceUsage: true,
	}

	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.rotateCommand())
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.flipCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.groupCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.fingerprintCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.sampleCommand())

	return root
}

// slogger exposes the charm logger to library code.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}

// newSession builds a session configured from the environment with the
// CLI's logger and metrics attached.
func (c *CLI) newSession() (*session.Session, *observe.Metrics, error) {
	mode, err := c.Config.Rotation()
	if err != nil {
		return nil, nil, err
	}
	metrics, err := observe.NewMetrics(c.Registry)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}
	sl := c.slogger()
	s := session.New(
		session.WithLogger(sl),
		session.WithCodec(codec.New(codec.WithForceRGB(c.Config.ForceRGB), codec.WithLogger(sl))),
		session.WithHistoryLimit(c.Config.HistoryLimit),
		session.WithPasteOffset(c.Config.PasteOffset),
		session.WithRotationMode(mode),
		session.WithObserver(observe.Multi{observe.NewLogger(sl), metrics}),
	)
	return s, metrics, nil
}

// load reads the composition on stdin into a fresh session.
func (c *CLI) load(cmd *cobra.Command) (*session.Session, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	s, _, err := c.newSession()
	if err != nil {
		return nil, err
	}
	ids, err := s.Load(string(data))
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded composition", "layers", len(ids), "bytes", len(data))
	return s, nil
}

// write prints the serialized composition.
func (c *CLI) write(cmd *cobra.Command, s *session.Session) error {
	_, err := io.WriteString(cmd.OutOrStdout(), s.Serialize())
	return err
}

// mutate loads stdin, applies op built from the current layer UUIDs and
// writes the result.
func (c *CLI) mutate(cmd *cobra.Command, sel *selection, build func(uuids []string) session.Operation) error {
	s, err := c.load(cmd)
	if err != nil {
		return err
	}
	uuids, err := sel.resolve(s)
	if err != nil {
		return err
	}
	res, err := s.Apply(build(uuids))
	if err != nil {
		return err
	}
	if res.Review != nil {
		for _, w := range res.Review.Warnings {
			c.Logger.Warn(w)
		}
	}
	return c.write(cmd, s)
}

// selection picks layers by stack index.
type selection struct {
	indices []int
	all     bool
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&sel.indices, "index", "i", nil, "layer indices, 0 is the bottom layer")
	cmd.Flags().BoolVarP(&sel.all, "all", "a", false, "select every layer")
}

func (sel *selection) resolve(s *session.Session) ([]string, error) {
	var uuids []string
	err := s.View(func(c *engine.Composition) error {
		all := c.UUIDs()
		if sel.all {
			uuids = all
			return nil
		}
		if len(sel.indices) == 0 {
			return fmt.Errorf("no layers selected: use --index or --all")
		}
		for _, i := range sel.indices {
			if i < 0 || i >= len(all) {
				return fmt.Errorf("layer index %d out of range [0, %d)", i, len(all))
			}
			if slices.Contains(uuids, all[i]) {
				return fmt.Errorf("layer index %d given twice", i)
			}
			uuids = append(uuids, all[i])
		}
		return nil
	})
	return uuids, err
}

func joinNames[T ~string](vals []T) string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
