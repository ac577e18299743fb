package persister

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	Database   string
	Collection string
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithDatabase(name string) Option {
	return func(o *Options) {
		o.Database = name
	}
}

func WithCollection(name string) Option {
	return func(o *Options) {
		o.Collection = name
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Database:   "fredDataDB",
		Collection: "observations",
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
