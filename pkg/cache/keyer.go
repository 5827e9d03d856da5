package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys for the pipeline stages. Implementations must be
// deterministic: equal inputs yield equal keys across processes, which is
// what lets a warm cache survive restarts.
type Keyer interface {
	// LineKey identifies a beamline loaded from manifest content. The
	// sequence name participates because one manifest can define several
	// sequences.
	LineKey(manifest []byte, sequence string) string

	// SurveyKey identifies the survey of the line under lineKey placed
	// from the given origin.
	SurveyKey(lineKey string, opts SurveyKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the survey under
	// surveyKey.
	ArtifactKey(surveyKey string, opts ArtifactKeyOpts) string
}

// SurveyKeyOpts captures the placement inputs that affect survey output.
type SurveyKeyOpts struct {
	OriginX       float64 `json:"origin_x"`
	OriginY       float64 `json:"origin_y"`
	OriginHeading float64 `json:"origin_heading"` // degrees
}

// ArtifactKeyOpts captures the render inputs that affect artifact output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer is the standard Keyer used by the CLI and the server.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LineKey generates a key for a loaded beamline.
func (k *DefaultKeyer) LineKey(manifest []byte, sequence string) string {
	return hashKey("line", Hash(manifest), sequence)
}

// SurveyKey generates a key for a survey document.
func (k *DefaultKeyer) SurveyKey(lineKey string, opts SurveyKeyOpts) string {
	return hashKey("survey", lineKey, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(surveyKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", surveyKey, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
