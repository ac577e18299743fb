package fetcher

import (
	"context"
	"time"
)

const (
	DefaultAttempts   = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

var DefaultStart = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

type Option func(*Options)

type Options struct {
	ApiKey     string
	BaseURL    string
	Start      time.Time
	End        time.Time
	Attempts   uint
	RetryDelay time.Duration
	Context    context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithRange bounds the observation dates. A zero end means today.
func WithRange(start, end time.Time) Option {
	return func(o *Options) {
		o.Start = start
		o.End = end
	}
}

func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *Options) {
		o.Attempts = attempts
		o.RetryDelay = delay
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Start:      DefaultStart,
		Attempts:   DefaultAttempts,
		RetryDelay: DefaultRetryDelay,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Attempts == 0 {
		options.Attempts = 1
	}
	return options
}
