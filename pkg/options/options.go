// Package options defines the generic options interface shared by all
// configurable components.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates flag-name prefixes with "." and appends a trailing "."
// when the result is non-empty, producing names like "milvus.address" or
// "prefix.milvus.address".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions defines methods to implement a generic options group.
type IOptions interface {
	// Validate validates all the required options.
	Validate() []error

	// AddFlags adds flags related to the given flagset.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
