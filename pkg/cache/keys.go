package cache

// Keyer derives cache keys. Implementations must be deterministic: the same
// inputs always produce the same key.
type Keyer interface {
	// GraphKey is the key for the graph converted from a tree document.
	GraphKey(treeHash string) string

	// ArtifactKey is the key for one rendered output of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Scale   float64 `json:"scale,omitempty"`
	Options any     `json:"options,omitempty"`
}

// DefaultKeyer produces "graph:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(treeHash string) string {
	return hashKey("graph", treeHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
