package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/w-h-a/fred/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMissingURI(t *testing.T) {
	p := NewPersister()

	_, err := p.List(t.Context())
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = p.ReplaceSeries(t.Context(), "FEDFUNDS", nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestToObservation(t *testing.T) {
	id := bson.NewObjectID()
	date := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)

	o := toObservation(document{
		Id:           id,
		SeriesId:     "FEDFUNDS",
		Date:         date,
		Value:        0.05,
		Embedding:    []float64{0.6, 0.8},
		EmbeddingKey: "abc",
	})

	assert.Equal(t, id.Hex(), o.ID)
	assert.Equal(t, "FEDFUNDS", o.SeriesId)
	assert.Equal(t, date, o.Date)
	assert.Equal(t, 0.05, o.Value)
	assert.Equal(t, []float32{0.6, 0.8}, o.Embedding)
	assert.Equal(t, "abc", o.EmbeddingKey)

	assert.Nil(t, toObservation(document{Id: id}).Embedding)
}
