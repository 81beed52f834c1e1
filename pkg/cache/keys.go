package cache

import (
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Keyer builds cache keys.
type Keyer interface {
	// SceneKey identifies the scene produced by opening one cluster of an
	// input file. inputHash is the [Hash] of the input bytes.
	SceneKey(inputHash string, opts SceneKeyOpts) string

	// ArtifactKey identifies one rendered artifact of a scene. sceneHash is
	// the [Hash] of the encoded scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts are the inputs that change a scene.
type SceneKeyOpts struct {
	ClusterID string         `json:"cluster_id"`
	Center    [2]float64     `json:"center"`
	Zoom      float64        `json:"zoom"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Layout    layout.Options `json:"layout"`

	// Connector is a fingerprint of the connector style, e.g. "black/2".
	Connector string `json:"connector"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Background string `json:"background,omitempty"`
	NoLabels   bool   `json:"no_labels,omitempty"`
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SceneKey(inputHash string, opts SceneKeyOpts) string {
	return hashKey("scene", inputHash, opts)
}

func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
