package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrUpstream         = errors.New("upstream api error")
	ErrFormat           = errors.New("format error")
	ErrNormalization    = errors.New("normalization error")
	ErrEmptyResponse    = errors.New("empty response")
	ErrAllModelsFailed  = errors.New("all models failed")
	ErrNoEligibleModels = fmt.Errorf("%w: no eligible models found after filtering", ErrEmptyResponse)
)

func Configuration(format string, args ...any) error {
	return wrap(ErrConfiguration, format, args...)
}

func Format(format string, args ...any) error {
	return wrap(ErrFormat, format, args...)
}

func Normalization(format string, args ...any) error {
	return wrap(ErrNormalization, format, args...)
}

func EmptyResponse(format string, args ...any) error {
	return wrap(ErrEmptyResponse, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// UpstreamError is a non-2xx answer from an external service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	if len(body) == 0 {
		return fmt.Sprintf("%s: http %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Service, e.StatusCode, body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

func Upstream(service string, statusCode int, body string) error {
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Body:       body,
	}
}

// AllModelsFailedError is returned once every candidate of a rotation
// has been attempted without success.
type AllModelsFailedError struct {
	Models []string
	Last   error
	Err    error
}

func (e *AllModelsFailedError) Error() string {
	msg := fmt.Sprintf("all models failed (%s)", strings.Join(e.Models, ", "))
	if e.Last != nil {
		msg += ": last error: " + e.Last.Error()
	}
	return msg
}

func (e *AllModelsFailedError) Is(target error) bool {
	return target == ErrAllModelsFailed
}

func (e *AllModelsFailedError) Unwrap() error {
	return e.Err
}
