package observation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	o := Observation{
		SeriesId: "FEDFUNDS",
		Date:     time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		Value:    0.65,
	}

	assert.Equal(t, "series FEDFUNDS observation on 2020-03-01T00:00:00.000Z had value 0.65.", o.Text())

	o.Value = 2
	assert.Equal(t, "series FEDFUNDS observation on 2020-03-01T00:00:00.000Z had value 2.", o.Text())
}

func TestVectorIdIsStablePerDay(t *testing.T) {
	morning := Observation{SeriesId: "MPRIME", Date: time.Date(2021, 7, 4, 1, 0, 0, 0, time.UTC)}
	evening := Observation{SeriesId: "MPRIME", Date: time.Date(2021, 7, 4, 22, 30, 0, 0, time.UTC)}

	assert.Equal(t, "MPRIME_2021-07-04", morning.VectorId())
	assert.Equal(t, morning.VectorId(), evening.VectorId())
}

func TestContentKey(t *testing.T) {
	a := ContentKey("text-embedding-004", "series A observation")
	b := ContentKey("text-embedding-004", "series A observation")
	c := ContentKey("text-embedding-3-small", "series A observation")
	d := ContentKey("text-embedding-004", "series B observation")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 64)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2010-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("01/01/2010")
	assert.Error(t, err)
}

func TestMetadata(t *testing.T) {
	o := Observation{SeriesId: "TOTALSL", Date: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), Value: 3456.78}
	meta := o.Metadata()

	assert.Equal(t, "TOTALSL", meta["seriesId"])
	assert.Equal(t, "2015-06-01T00:00:00.000Z", meta["date"])
	assert.Equal(t, 3456.78, meta["value"])
	assert.Equal(t, o.Text(), meta["text"])
}
