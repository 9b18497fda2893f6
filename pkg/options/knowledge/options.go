// Package knowledge provides knowledge pipeline configuration options.
package knowledge

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/consult-x/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains knowledge pipeline configuration.
type Options struct {
	// ChunkSizeTokens is the chunk window size in tokens. One token is
	// approximated as four characters of text.
	ChunkSizeTokens int `json:"chunk-size-tokens" mapstructure:"chunk-size-tokens"`

	// ChunkOverlap is the fraction of a chunk shared with its predecessor.
	ChunkOverlap float64 `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of chunks retrieved for answering.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the name of the vector collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// EmbedBatchSize is the maximum number of texts per embedding request.
	EmbedBatchSize int `json:"embed-batch-size" mapstructure:"embed-batch-size"`

	// EmbedWorkers is the number of concurrent embedding batch requests.
	EmbedWorkers int `json:"embed-workers" mapstructure:"embed-workers"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSizeTokens: 300,
		ChunkOverlap:    0.2,
		TopK:            8,
		Collection:      "vector_index",
		EmbeddingDim:    768, // text-embedding-004 dimension
		EmbedBatchSize:  100,
		EmbedWorkers:    4,
	}
}

// AddFlags adds flags for knowledge options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSizeTokens, options.Join(prefixes...)+"knowledge.chunk-size-tokens", o.ChunkSizeTokens, "Chunk window size in tokens (1 token = 4 chars).")
	fs.Float64Var(&o.ChunkOverlap, options.Join(prefixes...)+"knowledge.chunk-overlap", o.ChunkOverlap, "Fraction of a chunk shared with its predecessor.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"knowledge.top-k", o.TopK, "Number of chunks retrieved for answering.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"knowledge.collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"knowledge.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.EmbedBatchSize, options.Join(prefixes...)+"knowledge.embed-batch-size", o.EmbedBatchSize, "Maximum texts per embedding request.")
	fs.IntVar(&o.EmbedWorkers, options.Join(prefixes...)+"knowledge.embed-workers", o.EmbedWorkers, "Concurrent embedding batch requests.")
}

// Validate validates the knowledge options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSizeTokens <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size-tokens must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= 1 {
		errs = append(errs, fmt.Errorf("chunk-overlap must be in [0, 1)"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection cannot be empty"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embed-batch-size must be positive"))
	}
	return errs
}

// Complete completes the knowledge options with defaults.
func (o *Options) Complete() error {
	if o.EmbedWorkers <= 0 {
		o.EmbedWorkers = 4
	}
	return nil
}
