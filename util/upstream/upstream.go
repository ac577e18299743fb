package upstream

import (
	"errors"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/fred/errs"
	"google.golang.org/api/googleapi"
)

func OpenAI(service string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return errs.Upstream(service, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return errs.Upstream(service, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return err
}

func Anthropic(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return errs.Upstream("anthropic", apiErr.StatusCode, apiErr.RawJSON())
	}
	return err
}

func Google(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return errs.Upstream("google", apiErr.Code, apiErr.Message)
	}
	return err
}
