package observation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const (
	dayLayout = "2006-01-02"
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Observation struct {
	ID           string
	SeriesId     string
	Date         time.Time
	Value        float64
	Embedding    []float32
	EmbeddingKey string
}

// Text is the sentence embedded for an observation. Changing it
// invalidates every cached embedding through ContentKey.
func (o Observation) Text() string {
	return fmt.Sprintf(
		"series %s observation on %s had value %s.",
		o.SeriesId,
		o.Timestamp(),
		FormatValue(o.Value),
	)
}

// VectorId is stable per (series, day) so re-upserts overwrite.
func (o Observation) VectorId() string {
	return o.SeriesId + "_" + o.Day()
}

// Timestamp is the observation date in ISO-8601 UTC with milliseconds.
func (o Observation) Timestamp() string {
	return o.Date.UTC().Format(isoLayout)
}

func (o Observation) Day() string {
	return o.Date.UTC().Format(dayLayout)
}

func (o Observation) Metadata() map[string]any {
	return map[string]any{
		"seriesId": o.SeriesId,
		"date":     o.Timestamp(),
		"value":    o.Value,
		"text":     o.Text(),
	}
}

func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}

// ContentKey identifies an embedding by the model that produced it and
// the text it was produced from.
func ContentKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\n" + text))
	return hex.EncodeToString(sum[:])
}
