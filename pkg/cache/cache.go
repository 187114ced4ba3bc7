// Package cache stores computed flow artifacts keyed by dataset content
// and diagram options.
//
// All backends implement [Cache]. [NullCache] disables caching, [FileCache]
// persists entries on disk for CLI runs, [MemoryCache] keeps a bounded LRU
// in process for the dashboard server, and [RedisCache] and [MongoCache]
// share entries between server replicas. [Open] selects a backend from
// configuration.
//
// Keys come from a [Keyer] so that every option that changes the output
// also changes the key.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLGroup    = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
	TTLSummary  = time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with found == false and a nil error. A ttl of zero in
// Set means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GroupKeyOpts holds the options that affect a grouping result.
type GroupKeyOpts struct {
	Layers       []string `json:"layers"`
	MinCount     int      `json:"min_count"`
	FilterColumn string   `json:"filter_column,omitempty"`
	FilterValue  string   `json:"filter_value,omitempty"`
}

// ArtifactKeyOpts holds the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Detailed bool   `json:"detailed,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GroupKey identifies grouped counts for a dataset and grouping options.
	GroupKey(datasetHash string, opts GroupKeyOpts) string

	// ArtifactKey identifies a rendered artifact for a grouping result.
	ArtifactKey(groupHash string, opts ArtifactKeyOpts) string

	// SummaryKey identifies the descriptive summary of a dataset.
	SummaryKey(datasetHash string) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GroupKey returns "group:<sha256>".
func (DefaultKeyer) GroupKey(datasetHash string, opts GroupKeyOpts) string {
	return hashKey("group", datasetHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(groupHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", groupHash, opts)
}

// SummaryKey returns "summary:<datasetHash>".
func (DefaultKeyer) SummaryKey(datasetHash string) string {
	return "summary:" + datasetHash
}
