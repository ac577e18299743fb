package fred

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/fetcher"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/util/transport"
)

const (
	defaultBaseURL = "https://api.stlouisfed.org/fred"
	missingValue   = "."
	dayLayout      = "2006-01-02"
)

type fredFetcher struct {
	options fetcher.Options
	client  *http.Client
	now     func() time.Time
}

func (f *fredFetcher) Fetch(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	if len(f.options.ApiKey) == 0 {
		return nil, errs.Configuration("fred fetcher requires FRED_API_KEY")
	}

	if len(strings.TrimSpace(seriesId)) == 0 {
		return nil, errs.Format("series id is empty")
	}

	var body []byte

	err := retry.Do(
		func() error {
			b, err := f.get(ctx, seriesId)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.options.Attempts),
		retry.Delay(f.options.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.WarnContext(ctx, "retrying fred request", "series", seriesId, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	return parse(seriesId, body)
}

func (f *fredFetcher) get(ctx context.Context, seriesId string) ([]byte, error) {
	end := f.options.End
	if end.IsZero() {
		end = f.now()
	}

	query := url.Values{}
	query.Set("series_id", seriesId)
	query.Set("api_key", f.options.ApiKey)
	query.Set("file_type", "json")
	query.Set("observation_start", f.options.Start.UTC().Format(dayLayout))
	query.Set("observation_end", end.UTC().Format(dayLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.options.BaseURL+"/series/observations?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, err
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error_message").String()
		if len(msg) == 0 {
			msg = string(body)
		}
		return nil, errs.Upstream("fred", rsp.StatusCode, msg)
	}

	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var upstreamErr *errs.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode == http.StatusTooManyRequests || upstreamErr.StatusCode >= 500
	}

	return true
}

func parse(seriesId string, body []byte) ([]observation.Observation, error) {
	if !gjson.ValidBytes(body) {
		return nil, errs.Format("fred response for %s is not json", seriesId)
	}

	result := gjson.GetBytes(body, "observations")
	if !result.IsArray() {
		return nil, errs.Format("fred response for %s has no observations array", seriesId)
	}

	observations := []observation.Observation{}

	for _, item := range result.Array() {
		raw := strings.TrimSpace(item.Get("value").String())
		if len(raw) == 0 || raw == missingValue {
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			slog.Warn("skipping unparseable fred value", "series", seriesId, "value", raw)
			continue
		}

		date, err := observation.ParseDay(item.Get("date").String())
		if err != nil {
			slog.Warn("skipping unparseable fred date", "series", seriesId, "date", item.Get("date").String())
			continue
		}

		observations = append(observations, observation.Observation{
			SeriesId: seriesId,
			Date:     date,
			Value:    value,
		})
	}

	return observations, nil
}

func NewFetcher(opts ...fetcher.Option) fetcher.Fetcher {
	options := fetcher.NewOptions(opts...)

	if len(options.BaseURL) == 0 {
		options.BaseURL = defaultBaseURL
	}

	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	f := &fredFetcher{
		options: options,
		client:  transport.NewClient(30 * time.Second),
		now:     time.Now,
	}

	return f
}
