package cache

import (
	"time"

	"github.com/matzehuels/jsonflow/pkg/flow"
)

// Key prefixes, also used as key types in observability hooks.
const (
	KeyTypeGraph    = "graph"
	KeyTypeArtifact = "artifact"
)

// Default entry lifetimes.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// GraphKeyOpts are the build options that change a graph built from input.
type GraphKeyOpts struct {
	Reorganize bool        `json:"reorganize"`
	Layout     flow.Layout `json:"layout"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Color    bool   `json:"color,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	Pinned   bool   `json:"pinned,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey returns the key of the graph built from the input with the
	// given content hash.
	GraphKey(inputHash string, opts GraphKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the graph
	// with the given content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	return hashKey(KeyTypeGraph, inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, graphHash, opts)
}
