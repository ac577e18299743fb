package server

import "context"

const DefaultAddress = ":5050"

type Option func(*Options)

type Options struct {
	Name    string
	Address string
	Context context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:    "fred",
		Address: DefaultAddress,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
