// Package pipeline turns tree documents into rendered output.
//
// It is shared by the CLI (`reasontree render`) and the web server's export
// endpoint so both load, convert and render the same way. The two stages are:
//
//  1. Load: parse the document and convert it to a graph
//  2. Render: produce one artifact per requested format
//
// Rendered artifacts are cached by graph content and options.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatPNG},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/tree"
	"github.com/matzehuels/reasontree/pkg/view"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// MediaTypes maps formats to HTTP content types.
var MediaTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatDOT:  "text/vnd.graphviz",
	FormatJSON: "application/json",
}

// Options configures a pipeline run.
type Options struct {
	Formats []string     `json:"formats,omitempty"`
	View    view.Options `json:"view"`
	Scale   float64      `json:"scale,omitempty"`
	Refresh bool         `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.View.SetDefaults()
}

// Validate checks formats and view options.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return o.View.Validate()
}

// ValidateAndSetDefaults applies defaults then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// ValidateFormat reports whether format is supported. Formats are
// case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", format, FormatNames())
	}
	return nil
}

// ValidateFormats validates every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *tree.Node
	Graph     *graph.Graph
	GraphHash string
	Artifacts map[string][]byte
	Stats     Stats
	CacheHit  bool
}

// Stats contains pipeline timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// String summarizes the stats for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, load %s, render %s",
		s.NodeCount, s.EdgeCount, s.LoadTime.Round(time.Millisecond), s.RenderTime.Round(time.Millisecond))
}
