package embedder

import "context"

const DefaultDimensions = 768

type Option func(*Options)

type Options struct {
	ApiKey     string
	Model      string
	Dimensions int
	BaseURL    string
	Context    context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimensions: DefaultDimensions,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
