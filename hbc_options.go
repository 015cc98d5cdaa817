package hbc

import (
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/hbc/bytecode"
)

// Option configures how a container is opened.
type Option func(*options)

type options struct {
	observers []bytecode.Observer
	maxSize   int64
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) observer() bytecode.Observer {
	switch len(o.observers) {
	case 0:
		return nil
	case 1:
		return o.observers[0]
	default:
		return multiObserver(o.observers)
	}
}

// WithObserver attaches an observer that receives decode events. This
// option is additive; every observer supplied is called in order.
func WithObserver(obs bytecode.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithLogger logs decode events to logger at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return WithObserver(NewLogObserver(logger))
}

// WithMaxFileSize rejects inputs larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

type multiObserver []bytecode.Observer

func (m multiObserver) OnRegion(e bytecode.RegionEvent) {
	for _, o := range m {
		o.OnRegion(e)
	}
}

func (m multiObserver) OnFunction(e bytecode.FunctionEvent) {
	for _, o := range m {
		o.OnFunction(e)
	}
}

func (m multiObserver) OnDecode(e bytecode.DecodeEvent) {
	for _, o := range m {
		o.OnDecode(e)
	}
}
