package router

import (
	"context"
	"time"
)

const DefaultTTL = 5 * time.Minute

type Option func(*Options)

type Options struct {
	TTL     time.Duration
	Filter  func(ModelInfo) bool
	OnError func(model string, err error)
	Context context.Context
}

func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

func WithFilter(filter func(ModelInfo) bool) Option {
	return func(o *Options) {
		o.Filter = filter
	}
}

func WithOnError(fn func(model string, err error)) Option {
	return func(o *Options) {
		o.OnError = fn
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TTL:     DefaultTTL,
		Filter:  ChatEligible,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.TTL <= 0 {
		options.TTL = DefaultTTL
	}
	if options.Filter == nil {
		options.Filter = ChatEligible
	}
	return options
}
