package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/export"
	"github.com/san-kum/oscsim/internal/metrics"
	"github.com/san-kum/oscsim/internal/optim"
	"github.com/san-kum/oscsim/internal/store"
	"github.com/san-kum/oscsim/internal/tui"
)

// simulate runs cfg once with the default metrics inside a telemetry span.
func (a *app) simulate(ctx context.Context, name string, cfg *config.Config) (*dynamo.Result, error) {
	exp := experiment.New(cfg.Experiment())
	if err := exp.Setup(metrics.Defaults()); err != nil {
		return nil, err
	}

	p := cfg.Params()
	ctx, finish := a.recorder.Start(ctx, name, p)
	start := time.Now()
	result, err := exp.Run(ctx)
	finish(result, err)

	if result != nil {
		slog.Debug("simulation finished", "op", name, "steps", result.StepsTaken, "elapsed", time.Since(start))
		if !result.Finite() {
			slog.Warn("energies are not finite; check mass and coefficients",
				"mass", p.Mass, "stiffness", p.Stiffness, "damping", p.Damping)
		}
	}
	return result, err
}

func (a *app) runCmd() *cobra.Command {
	var outDir, jsonPath, csvPath, xlsxPath, chartPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := a.simulate(cmd.Context(), "run", cfg)
			if err != nil {
				if result != nil {
					fmt.Fprintf(os.Stderr, "stopped after %d steps\n", result.StepsTaken)
				}
				return err
			}
			elapsed := time.Since(start)

			p := cfg.Params()
			meta := export.Metadata{
				Timestamp:       time.Now().UTC(),
				Params:          p,
				Strict:          cfg.Strict,
				RejectNonFinite: cfg.RejectNonFinite,
				Regime:          analysis.Characterize(p).Regime,
				Metrics:         result.Metrics,
			}

			if outDir != "" {
				runID, err := store.New(outDir).Save(cfg.Experiment().RunConfig(), p, result)
				if err != nil {
					return fmt.Errorf("save run: %w", err)
				}
				meta.ID = runID
				fmt.Fprintf(os.Stderr, "run id: %s\n", runID)
			}

			stdout := cmd.OutOrStdout()
			if err := writeOutputs(stdout, meta, result.Series, jsonPath, csvPath, xlsxPath, chartPath); err != nil {
				return err
			}

			// Keep stdout clean for piped data.
			if jsonPath == "-" || csvPath == "-" || xlsxPath == "-" {
				return nil
			}
			return printSummary(stdout, p, result, elapsed)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "write a run bundle (metadata.json, energies.csv) under this directory")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write series as JSON (- for stdout)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write series as CSV (- for stdout)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write series as an XLSX workbook (- for stdout)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "render energy chart (png, svg, pdf by extension)")
	return cmd
}

func writeOutputs(stdout io.Writer, meta export.Metadata, s dynamo.Series, jsonPath, csvPath, xlsxPath, chartPath string) error {
	if jsonPath != "" {
		if err := withOutput(stdout, jsonPath, func(w io.Writer) error { return export.WriteJSON(w, meta, s) }); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if csvPath != "" {
		if err := withOutput(stdout, csvPath, func(w io.Writer) error { return export.WriteCSV(w, s) }); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	switch xlsxPath {
	case "":
	case "-":
		if err := export.WriteXLSX(stdout, meta, s); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	default:
		if err := export.SaveXLSX(xlsxPath, meta, s); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}
	if chartPath != "" {
		if err := export.SaveChart(chartPath, s, export.DefaultChartOptions()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}
	return nil
}

func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(out io.Writer, p dynamo.Params, result *dynamo.Result, elapsed time.Duration) error {
	c := analysis.Characterize(p)

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "steps: %d  duration: %.4gs  regime: %s\n", result.StepsTaken, p.Duration(), c.Regime)

	if last, ok := result.Last(); ok {
		fmt.Fprintf(out, "final: t=%.4f  kinetic=%.6g  potential=%.6g  total=%.6g\n",
			last.Time, last.Kinetic, last.Potential, last.Total)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func (a *app) plotCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "plot the three energy curves in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}
			result, err := a.simulate(cmd.Context(), "plot", cfg)
			if err != nil {
				return err
			}

			graph, ok := tui.EnergyGraph(result.Series, width, height)
			if !ok {
				return fmt.Errorf("nothing to plot: no finite energy values")
			}
			fmt.Println(graph)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "graph width")
	cmd.Flags().IntVar(&height, "height", 15, "graph height")
	return cmd
}

func (a *app) chartCmd() *cobra.Command {
	var title, format string

	cmd := &cobra.Command{
		Use:   "chart [file|-]",
		Short: "render the energy chart to a png, svg or pdf file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}
			result, err := a.simulate(cmd.Context(), "chart", cfg)
			if err != nil {
				return err
			}

			opts := export.DefaultChartOptions()
			if title != "" {
				opts.Title = title
			}
			if args[0] == "-" {
				return export.WriteChart(cmd.OutOrStdout(), format, result.Series, opts)
			}
			if err := export.SaveChart(args[0], result.Series, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	cmd.Flags().StringVar(&format, "format", "png", "image format when writing to stdout")
	return cmd
}

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "oscillator characteristics and energy frequency analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}
			p := cfg.Params()
			c := analysis.Characterize(p)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "regime\t%s\n", c.Regime)
			fmt.Fprintf(w, "natural frequency\t%.6f rad/s\n", c.NaturalFrequency)
			fmt.Fprintf(w, "damping ratio\t%.6f\n", c.DampingRatio)
			fmt.Fprintf(w, "damped frequency\t%.6f rad/s\n", c.DampedFrequency)
			fmt.Fprintf(w, "period\t%.6f s\n", c.Period)
			fmt.Fprintf(w, "expected energy frequency\t%.6f Hz\n", c.EnergyFrequency())
			if err := w.Flush(); err != nil {
				return err
			}

			result, err := a.simulate(cmd.Context(), "analyze", cfg)
			if err != nil {
				return err
			}
			if !result.Finite() {
				fmt.Println("\nenergies are not finite; no spectrum")
				return nil
			}

			freq := analysis.DominantFrequency(result.Kinetic, p.Dt)
			fmt.Printf("\nmeasured kinetic energy frequency: %.6f Hz\n", freq)
			if freq > 0 {
				fmt.Printf("period: %.6f s\n", 1.0/freq)
			}

			ps := analysis.PowerSpectrum(result.Kinetic)
			if len(ps) >= 16 {
				plotData := ps[1 : len(ps)/4]
				graph := asciigraph.Plot(plotData,
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption("power spectrum (kinetic energy)"),
				)
				fmt.Println()
				fmt.Println(graph)
			}
			return nil
		},
	}
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		params   []string
		metric   string
		maximize bool
		top      int
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid sweep over parameters ranked by a metric",
		Example: `  oscsim sweep --param damping=0,0.1,0.5 --metric energy_decay
  oscsim sweep --param mass=0.5,1,2 --param stiffness=1,4 --metric peak_kinetic --maximize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}
			if len(params) == 0 {
				return fmt.Errorf("at least one --param name=v1,v2,... is required")
			}

			names := make([]string, 0, len(params))
			ranges := make([][]float64, 0, len(params))
			for _, arg := range params {
				name, values, err := parseAxis(arg)
				if err != nil {
					return err
				}
				names = append(names, name)
				ranges = append(ranges, values)
			}

			goal := optim.Minimize
			if maximize {
				goal = optim.Maximize
			}

			grid := optim.NewGridSearch(names, ranges).WithWorkers(workers)
			policy := cfg.Experiment().RunConfig()

			ctx, finish := a.recorder.Start(cmd.Context(), "sweep", cfg.Params())
			start := time.Now()
			points, err := grid.Search(ctx, cfg.Params(), policy, metric, goal)
			finish(nil, err)
			if err != nil {
				return err
			}
			slog.Debug("sweep finished", "points", len(points), "elapsed", time.Since(start))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			header := []string{"RANK"}
			for _, n := range names {
				header = append(header, strings.ToUpper(n))
			}
			header = append(header, "REGIME", strings.ToUpper(metric))
			fmt.Fprintln(w, strings.Join(header, "\t"))

			for i, pt := range points {
				if top > 0 && i >= top {
					break
				}
				row := []string{strconv.Itoa(i + 1)}
				for _, n := range names {
					row = append(row, strconv.FormatFloat(pt.Values[n], 'g', -1, 64))
				}
				row = append(row, string(analysis.Characterize(pt.Params).Regime), fmt.Sprintf("%.6g", pt.Score))
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter values as name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "energy_decay", "metric to rank by (energy_drift, energy_decay, peak_kinetic, finite)")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "rank highest metric first")
	cmd.Flags().IntVar(&top, "top", 0, "show only the best N points")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	return cmd
}

// parseAxis reads "name=v1,v2,...".
func parseAxis(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(list) == "" {
		return "", nil, fmt.Errorf("invalid --param %q: want name=v1,v2,...", arg)
	}

	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value %q for %s: %w", part, name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func (a *app) benchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "benchmark the integrator across step counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stepCounts := []int{1000, 10000, 100000, 1000000}
			dts := []float64{0.001, 0.01}

			fmt.Println("benchmarking damped oscillator")
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEPS\tDT\tTIME\tSTEPS/SEC")

			for _, n := range stepCounts {
				for _, dt := range dts {
					p := dynamo.DefaultParams()
					p.Damping = 0.1
					p.Steps = n
					p.Dt = dt

					exp := experiment.New(experiment.Config{Params: p})
					if err := exp.Setup(nil); err != nil {
						return err
					}

					start := time.Now()
					result, err := exp.Run(cmd.Context())
					if err != nil {
						return err
					}
					elapsed := time.Since(start)

					stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
					fmt.Fprintf(w, "%d\t%.4fs\t%v\t%.0f\n", result.StepsTaken, dt, elapsed, stepsPerSec)
				}
			}
			return w.Flush()
		},
	}
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMASS\tSTIFFNESS\tDAMPING\tX0\tV0\tSTEPS\tDT\tREGIME")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%d\t%g\t%s\n",
					name, c.Mass, c.Stiffness, c.Damping,
					c.InitState.Displacement, c.InitState.Velocity,
					c.Steps, c.Dt, analysis.Characterize(c.Params()).Regime)
			}
			return w.Flush()
		},
	}
}
