package connection

import (
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 6379
	DefaultTimeout = 60 * time.Second
	DefaultRetries = 3
)

// Options holds component options. They are fixed once configured.
type Options struct {
	// Timeout is the default caching/lease duration and the reconnect time
	// budget.
	Timeout time.Duration
	// Retries is the maximum number of reconnect attempts.
	Retries int
	// MaxSize is declared for configuration compatibility only; the store
	// enforces its own limits.
	MaxSize int
}

// DefaultOptions returns the option defaults.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
	}
}

func (o Options) merge(params *viper.Viper) Options {
	if ms, ok := IntParam(params, "options.timeout"); ok {
		o.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n, ok := IntParam(params, "options.retries"); ok {
		o.Retries = n
	}
	if n, ok := IntParam(params, "options.max_size"); ok {
		o.MaxSize = n
	}

	return o
}

// IntParam returns the integer stored under key when it is present and
// well-formed.
func IntParam(params *viper.Viper, key string) (int, bool) {
	if params == nil || !params.IsSet(key) {
		return 0, false
	}
	n, err := cast.ToIntE(params.Get(key))
	if err != nil {
		return 0, false
	}

	return n, true
}
