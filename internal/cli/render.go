package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/chart"
	"github.com/matzehuels/hillchart/pkg/config"
	"github.com/matzehuels/hillchart/pkg/export"
	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/observability"
	"github.com/matzehuels/hillchart/pkg/render/alignment"
	"github.com/matzehuels/hillchart/pkg/render/sink"
)

// Render formats.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatJSON = "json"
)

var renderFormats = []string{formatSVG, formatPNG, formatPDF, formatJSON}

type renderOpts struct {
	output  string
	formats []string
	noCache bool
	scale   float64
	width   float64
	height  float64
	title   string
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart to SVG, PNG, PDF or JSON",
		Long: `Render the chart. With one format, -o names the output file ("-" for
stdout). With several, -o is a base path and each format gets its own
extension. PNG and PDF need rsvg-convert (librsvg) on PATH.`,
		Example: `  hillchart render -o roadmap.svg
  hillchart render -f svg,png -o out/roadmap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", formatSVG, "output format(s): svg, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the PNG/PDF artifact cache")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "image width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "image height (default from config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (default from config)")
	return cmd
}

// parseFormats parses a comma-separated format list.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{formatSVG}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(renderFormats, f) {
			return nil, fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(renderFormats, ", "))
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// outputPaths maps each format to its output file. A single format writes
// exactly to output; several share output as a base path.
func outputPaths(output, chartName string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = chartName
	}
	if ext := filepath.Ext(base); slices.Contains(renderFormats, strings.TrimPrefix(ext, ".")) {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func (c *CLI) svgOptions(cfg *config.Config, opts *renderOpts) []sink.SVGOption {
	width, height := opts.width, opts.height
	if width <= 0 {
		width = float64(cfg.Chart.Width)
	}
	if height <= 0 {
		height = float64(cfg.Chart.Height)
	}
	title := opts.title
	if title == "" {
		title = cfg.Chart.Title
	}
	return []sink.SVGOption{
		sink.WithSize(width, height),
		sink.WithDotRadius(cfg.Layout.DotRadius),
		sink.WithTitle(title),
	}
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	ch, done, err := c.openChart(ctx)
	if err != nil {
		return err
	}
	defer done()

	artifacts, err := newArtifactCache(opts.noCache)
	if err != nil {
		logger.Warn("artifact cache unavailable", "err", err)
		artifacts = cache.NewNullCache()
	}
	defer artifacts.Close()

	frame := ch.Frame()
	svgOpts := c.svgOptions(cfg, opts)
	raster := []sink.RasterOption{
		sink.WithSVGOptions(svgOpts...),
		sink.WithScale(opts.scale),
		sink.WithCache(artifacts, cache.NewDefaultKeyer()),
	}

	prog := newProgress(logger)
	observability.Render().OnRenderStart(ctx, opts.formats)
	start := time.Now()

	paths := outputPaths(opts.output, ch.Name(), opts.formats)
	var written []string
	for _, format := range opts.formats {
		data, err := renderFrame(ctx, frame, format, svgOpts, raster)
		if err != nil {
			observability.Render().OnRenderComplete(ctx, opts.formats, time.Since(start), err)
			return fmt.Errorf("%s: %w", format, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))
		if err := writeOutput(paths[format], data); err != nil {
			return err
		}
		written = append(written, paths[format])
	}
	observability.Render().OnRenderComplete(ctx, opts.formats, time.Since(start), nil)

	if len(written) == 1 && (written[0] == "" || written[0] == "-") {
		return nil
	}
	prog.done(fmt.Sprintf("Rendered %d milestones", len(frame.Placements)))
	for _, p := range written {
		printFile(p)
	}
	return nil
}

func renderFrame(ctx context.Context, f hill.Frame, format string, svgOpts []sink.SVGOption, raster []sink.RasterOption) ([]byte, error) {
	switch format {
	case formatSVG:
		return sink.RenderSVG(f, svgOpts...), nil
	case formatJSON:
		return sink.RenderJSON(f, sink.WithJSONIndent())
	case formatPNG, formatPDF:
		s := newSpinner(ctx, os.Stderr, "Converting to "+format)
		s.Start()
		defer s.Stop()
		if format == formatPNG {
			return sink.RenderPNG(ctx, f, raster...)
		}
		return sink.RenderPDF(ctx, f, raster...)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	var output, formatStr string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export milestones as JSON, CSV, YAML or Markdown",
		Long: `Export each milestone with its rounded percentage and phase
("Problem Analysis" before the midpoint, "Executing Plan" after).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			data, err := export.Encode(format, ch.Name(), ch.Markers())
			if err != nil {
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printSuccess("Exported %d milestones", len(ch.Markers()))
				printFile(output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&formatStr, "format", "f", string(export.FormatJSON), "format: json, csv, yaml, md")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(export.Formats))
		for i, f := range export.Formats {
			names[i] = string(f)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (c *CLI) alignmentsCommand() *cobra.Command {
	var output, format string
	var detailed bool
	cmd := &cobra.Command{
		Use:   "alignments",
		Short: "Draw the alignment memory as a graph",
		Long: `Run a settle pass and draw which milestones share an x position. Each
edge is an alignment between two overlapping milestones, labeled with the
shared position. Rendering to SVG uses Graphviz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != formatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
			}
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return runAlignments(cmd.Context(), ch, format, output, detailed)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "dot", "format: dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show positions, ranks and depths")
	return cmd
}

func runAlignments(ctx context.Context, ch *chart.Chart, format, output string, detailed bool) error {
	frame := ch.Settle(ctx)
	dot := alignment.ToDOT(frame, ch.Alignments(), alignment.Options{Detailed: detailed})

	data := []byte(dot)
	if format == formatSVG {
		svg, err := alignment.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		data = svg
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output != "" && output != "-" {
		printSuccess("Wrote %d alignments", len(ch.Alignments()))
		printFile(output)
	}
	return nil
}
