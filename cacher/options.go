package cacher

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Location string
	Prefix   string
	TTL      time.Duration
	Capacity int
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

func WithCapacity(capacity int) Option {
	return func(o *Options) {
		o.Capacity = capacity
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Prefix:   "fred:embedding:",
		TTL:      30 * 24 * time.Hour,
		Capacity: 10000,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
