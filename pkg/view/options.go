package view

import (
	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
)

// Layout directions. Only top-down is supported.
const (
	DirectionTopDown = "TB"
)

// Defaults for the hierarchical layout.
const (
	DefaultReasoningColor  = "#10b981"
	DefaultPlainColor      = "#667eea"
	DefaultEdgeColor       = "#64748b"
	DefaultHighlightColor  = "#3b82f6"
	DefaultFontColor       = "#ffffff"
	DefaultEdgeWidth       = 3
	DefaultFontSize        = 14
	DefaultLevelSeparation = 300
	DefaultNodeSpacing     = 400
)

// Colors maps color tags to fills.
type Colors struct {
	Reasoning string `toml:"reasoning" json:"reasoning"`
	Plain     string `toml:"plain" json:"plain"`
}

// For returns the fill for tag.
func (c Colors) For(tag graph.ColorTag) string {
	if tag == graph.TagReasoning {
		return c.Reasoning
	}
	return c.Plain
}

// Options configures the hierarchical layout and styling. It is comparable,
// so a caller can tell whether options changed between renders.
type Options struct {
	Direction       string `toml:"-" json:"direction"`
	LevelSeparation int    `toml:"level_separation" json:"level_separation"`
	NodeSpacing     int    `toml:"node_spacing" json:"node_spacing"`
	Colors          Colors `toml:"colors" json:"colors"`
	EdgeColor       string `toml:"edge_color" json:"edge_color"`
	HighlightColor  string `toml:"highlight_color" json:"highlight_color"`
	EdgeWidth       int    `toml:"edge_width" json:"edge_width"`
	FontSize        int    `toml:"font_size" json:"font_size"`
	FontColor       string `toml:"font_color" json:"font_color"`
}

// DefaultOptions returns the standard top-down layout.
func DefaultOptions() Options {
	return Options{
		Direction:       DirectionTopDown,
		LevelSeparation: DefaultLevelSeparation,
		NodeSpacing:     DefaultNodeSpacing,
		Colors: Colors{
			Reasoning: DefaultReasoningColor,
			Plain:     DefaultPlainColor,
		},
		EdgeColor:      DefaultEdgeColor,
		HighlightColor: DefaultHighlightColor,
		EdgeWidth:      DefaultEdgeWidth,
		FontSize:       DefaultFontSize,
		FontColor:      DefaultFontColor,
	}
}

// SetDefaults fills zero fields from [DefaultOptions].
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.LevelSeparation == 0 {
		o.LevelSeparation = d.LevelSeparation
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = d.NodeSpacing
	}
	if o.Colors.Reasoning == "" {
		o.Colors.Reasoning = d.Colors.Reasoning
	}
	if o.Colors.Plain == "" {
		o.Colors.Plain = d.Colors.Plain
	}
	if o.EdgeColor == "" {
		o.EdgeColor = d.EdgeColor
	}
	if o.HighlightColor == "" {
		o.HighlightColor = d.HighlightColor
	}
	if o.EdgeWidth == 0 {
		o.EdgeWidth = d.EdgeWidth
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.FontColor == "" {
		o.FontColor = d.FontColor
	}
}

// Validate checks the options after defaults were applied.
func (o Options) Validate() error {
	if o.Direction != DirectionTopDown {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported layout direction %q (only %s)", o.Direction, DirectionTopDown)
	}
	for _, c := range []string{o.Colors.Reasoning, o.Colors.Plain, o.EdgeColor, o.HighlightColor, o.FontColor} {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	if o.EdgeWidth < 0 || o.FontSize < 0 || o.LevelSeparation < 0 || o.NodeSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sizes must not be negative")
	}
	return nil
}
