package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/pipeline"
	"github.com/matzehuels/reasontree/pkg/view"
)

// viewFlags are the command-line overrides for view options shared by
// render, serve and browse.
type viewFlags struct {
	reasoningColor string
	plainColor     string
	edgeColor      string
	edgeWidth      int
	fontSize       int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.reasoningColor, "reasoning-color", "", "fill for nodes with reasoning (default "+view.DefaultReasoningColor+")")
	cmd.Flags().StringVar(&f.plainColor, "plain-color", "", "fill for nodes without reasoning (default "+view.DefaultPlainColor+")")
	cmd.Flags().StringVar(&f.edgeColor, "edge-color", "", "edge color (default "+view.DefaultEdgeColor+")")
	cmd.Flags().IntVar(&f.edgeWidth, "edge-width", 0, "edge width in pixels")
	cmd.Flags().IntVar(&f.fontSize, "font-size", 0, "label font size")
}

// apply overlays the flags that were set on base.
func (f *viewFlags) apply(base view.Options) (view.Options, error) {
	if f.reasoningColor != "" {
		base.Colors.Reasoning = f.reasoningColor
	}
	if f.plainColor != "" {
		base.Colors.Plain = f.plainColor
	}
	if f.edgeColor != "" {
		base.EdgeColor = f.edgeColor
	}
	if f.edgeWidth != 0 {
		base.EdgeWidth = f.edgeWidth
	}
	if f.fontSize != 0 {
		base.FontSize = f.fontSize
	}
	base.SetDefaults()
	return base, base.Validate()
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		vf         viewFlags
	)
	opts := pipeline.Options{Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a reasoning tree to svg, png, pdf, dot or json",
		Long: `Render a reasoning tree to one or more files.

Nodes are laid out top-down with Graphviz; nodes that carry reasoning are
filled with the reasoning color. The json format writes the converted graph
(nodes with labels, color tags and details, plus parent-child edges).

Use "-" as the input to read the tree from stdin, and "-o -" to write a
single format to stdout. Rendered output is cached.

An input ending in .graph.json is read as a previously exported graph and
re-rendered without the source tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if output == "-" && len(opts.Formats) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format")
			}
			v, err := vf.apply(c.Config.View)
			if err != nil {
				return err
			}
			opts.View = v
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default svg)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "png scale factor")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	vf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	execute := runner.Execute
	if isGraphInput(input) {
		execute = runner.ExecuteGraph
	}
	res, err := execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %s", res.Stats))

	if output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", filepath.Base(input))
	for _, p := range paths {
		printFile(p)
	}
	fmt.Println(statsLine(res.Graph.NodeCount(), res.Graph.EdgeCount(), res.CacheHit))
	return nil
}

// readInput reads the tree document at path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	return data, err
}

// writeArtifacts writes each format and returns the paths written. A single
// format goes to output as given; otherwise files are named <base>.<ext>.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if len(formats) == 1 && output != "" {
		return []string{output}, os.WriteFile(output, artifacts[formats[0]], 0o644)
	}

	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + fileExt(f)
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path. With no output it strips the
// extension from input ("tree" for stdin); a known format extension on
// output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "tree"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if isFormatExt(output) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// fileExt returns the file extension for format. Graph JSON gets its own
// suffix so it never replaces the input tree.
func fileExt(format string) string {
	if format == pipeline.FormatJSON {
		return "graph.json"
	}
	return format
}

// isGraphInput reports whether path names a graph written by the json format.
func isGraphInput(path string) bool {
	return strings.HasSuffix(path, "."+fileExt(pipeline.FormatJSON))
}

func isFormatExt(path string) bool {
	return pipeline.ValidFormats[strings.TrimPrefix(filepath.Ext(path), ".")]
}
