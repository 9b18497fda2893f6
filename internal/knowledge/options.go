// Package knowledge provides the consult-knowledge application.
package knowledge

import (
	"github.com/spf13/pflag"

	httpopts "github.com/kart-io/consult-x/pkg/options/http"
	knowledgeopts "github.com/kart-io/consult-x/pkg/options/knowledge"
	llmopts "github.com/kart-io/consult-x/pkg/options/llm"
	logopts "github.com/kart-io/consult-x/pkg/options/logger"
	milvusopts "github.com/kart-io/consult-x/pkg/options/milvus"
)

// Options contains all knowledge service options.
type Options struct {
	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Milvus contains Milvus database configuration.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Embedding contains embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Knowledge contains pipeline configuration.
	Knowledge *knowledgeopts.Options `json:"knowledge" mapstructure:"knowledge"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:      httpopts.NewOptions(),
		Log:       logopts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		Embedding: llmopts.NewProviderOptions(),
		Chat:      llmopts.NewProviderOptions(),
		Knowledge: knowledgeopts.NewOptions(),
	}
}

// AddFlags adds all service flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.Knowledge.AddFlags(fs)
}

// Validate checks all option groups.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Milvus.Validate()...)
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	errs = append(errs, o.Knowledge.Validate()...)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Complete fills in defaults that depend on other options.
func (o *Options) Complete() error {
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	if err := o.Chat.Complete(); err != nil {
		return err
	}
	return o.Knowledge.Complete()
}
