// Package milvus provides Milvus vector database configuration options.
package milvus

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/consult-x/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Milvus connection configuration.
type Options struct {
	// Address is the Milvus server address (host:port).
	Address string `json:"address" mapstructure:"address"`

	// Database is the Milvus database name.
	Database string `json:"database" mapstructure:"database"`

	// Username for authentication, empty disables auth.
	Username string `json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `json:"password" mapstructure:"password"`

	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Address:        "localhost:19530",
		Database:       "default",
		ConnectTimeout: 10 * time.Second,
	}
}

// AddFlags adds flags for Milvus options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Address, options.Join(prefixes...)+"milvus.address", o.Address, "Milvus server address.")
	fs.StringVar(&o.Database, options.Join(prefixes...)+"milvus.database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, options.Join(prefixes...)+"milvus.username", o.Username, "Milvus username.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"milvus.password", o.Password, "Milvus password.")
	fs.DurationVar(&o.ConnectTimeout, options.Join(prefixes...)+"milvus.connect-timeout", o.ConnectTimeout, "Milvus connection timeout.")
}

// Validate validates the Milvus options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("milvus.address cannot be empty"))
	}
	if o.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("milvus.connect-timeout must be positive"))
	}
	return errs
}
