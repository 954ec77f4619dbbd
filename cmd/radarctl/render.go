package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"radarcli/internal/config"
	"radarcli/internal/radar"
	"radarcli/internal/session"
	"radarcli/internal/sources"
	"radarcli/internal/validation"
)

const stdinName = "-"

type renderOptions struct {
	integer    bool
	autoScale  bool
	palette    string
	gridRadius float64
	maxTicks   int
	sheet      string
	reverse    []string
	maxBytes   int64
}

func (o renderOptions) settings() session.Settings {
	return session.Settings{
		IntegerMode: o.integer,
		AutoScale:   o.autoScale,
		PaletteName: o.palette,
		GridRadius:  o.gridRadius,
		MaxTicks:    o.maxTicks,
	}
}

func (o *renderOptions) register(cmd *cobra.Command) {
	defaults := session.DefaultSettings()
	flags := cmd.Flags()
	flags.BoolVar(&o.integer, "integer", false, "Round ranges and ticks to whole numbers")
	flags.BoolVar(&o.autoScale, "auto-scale", defaults.AutoScale, "Re-derive ranges from the data")
	flags.StringVar(&o.palette, "palette", defaults.PaletteName, "ColorBrewer palette name")
	flags.Float64Var(&o.gridRadius, "grid-radius", defaults.GridRadius, "Radius of the outer ring in output units")
	flags.IntVar(&o.maxTicks, "max-ticks", defaults.MaxTicks, "Maximum grid rings per axis")
	flags.StringVar(&o.sheet, "sheet", "", "Worksheet to read from workbooks (default: first sheet with a table)")
	flags.StringSliceVar(&o.reverse, "reverse", nil, "Dimensions drawn from max at the center to min at the rim")
	flags.Int64Var(&o.maxBytes, "max-bytes", config.DefaultMaxBodyBytes, "Largest input file accepted, in bytes")
}

func newRenderCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		opts       renderOptions
		pretty     bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render files to chart snapshots",
		Long: `Render reads each file (or stdin when none is given, or for "-") and
prints its chart snapshot as JSON. Directories contribute their .csv, .tsv,
.txt, .xlsx and .xlsm files. Several inputs are rendered concurrently and
printed as a JSON array in argument order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			validator := validation.NewFileValidator(opts.maxBytes, log)

			if len(args) == 0 {
				args = []string{stdinName}
			}
			inputs, err := validator.ExpandInputs(args)
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := validator.ValidateOutputPath(outputPath); err != nil {
					return err
				}
			}

			snapshots, err := renderInputs(cmd.Context(), cmd.InOrStdin(), inputs, opts, log)
			if err != nil {
				return err
			}

			var out interface{} = snapshots
			if len(snapshots) == 1 {
				out = snapshots[0]
			}

			w := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return writeJSON(w, out, pretty)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

// renderInputs renders every input with its own session. Results keep the
// order of inputs; the first failure cancels the rest.
func renderInputs(ctx context.Context, stdin io.Reader, inputs []string, opts renderOptions, logger *slog.Logger) ([]session.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	snapshots := make([]session.Snapshot, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			table, err := loadTable(stdin, input, opts.sheet, opts.maxBytes)
			if err != nil {
				return fmt.Errorf("%s: %w", displayName(input), err)
			}

			snap, err := renderTable(displayName(input), table, opts, logger)
			if err != nil {
				return err
			}
			snapshots[i] = snap

			logger.DebugContext(gctx, "input rendered",
				slog.String("input", displayName(input)),
				slog.Int("dimensions", len(snap.Dimensions)),
				slog.Int("series", len(snap.Series)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "render failed", slog.String("error", err.Error()))
		return nil, err
	}
	return snapshots, nil
}

func loadTable(stdin io.Reader, input, sheet string, maxBytes int64) (radar.Table, error) {
	if input != stdinName {
		return sources.ReadFile(input, sheet)
	}

	text, err := sources.ReadText(stdin, maxBytes)
	if err != nil {
		return radar.Table{}, err
	}
	return sources.ParseText(text)
}

// renderTable loads table into a fresh session named name and applies the
// reversed dimensions. Dimensions the table lacks are skipped with a warning.
func renderTable(name string, table radar.Table, opts renderOptions, logger *slog.Logger) (session.Snapshot, error) {
	sess := session.New(name, opts.settings())

	snap, ok := sess.LoadTable(table)
	if !ok {
		return session.Snapshot{}, fmt.Errorf("%s: %w", name, sources.ErrNoTable)
	}

	for _, dim := range opts.reverse {
		if !sess.HasDimension(dim) {
			logger.Warn("reverse skipped for missing dimension",
				slog.String("input", name),
				slog.String("dimension", dim))
			continue
		}
		var err error
		if snap, err = sess.SetReverse(dim, true); err != nil {
			return session.Snapshot{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return snap, nil
}

func displayName(input string) string {
	if input == stdinName {
		return "stdin"
	}
	return filepath.Base(input)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
