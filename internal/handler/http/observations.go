package http

import (
	"log/slog"
	"net/http"

	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
)

type observationView struct {
	ID           string    `json:"_id"`
	SeriesId     string    `json:"seriesId"`
	Date         string    `json:"date"`
	Value        float64   `json:"value"`
	Embedding    []float32 `json:"embedding,omitempty"`
	EmbeddingKey string    `json:"embeddingKey,omitempty"`
}

type observationsResponse struct {
	Observations []observationView `json:"observations"`
}

type observationsHandler struct {
	persister persister.Persister
}

func (h *observationsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var (
		stored []observation.Observation
		err    error
	)

	if seriesId := r.URL.Query().Get("seriesId"); len(seriesId) > 0 {
		stored, err = h.persister.ListSeries(r.Context(), seriesId)
	} else {
		stored, err = h.persister.List(r.Context())
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list observations", "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	views := make([]observationView, 0, len(stored))
	for _, o := range stored {
		views = append(views, observationView{
			ID:           o.ID,
			SeriesId:     o.SeriesId,
			Date:         o.Timestamp(),
			Value:        o.Value,
			Embedding:    o.Embedding,
			EmbeddingKey: o.EmbeddingKey,
		})
	}

	writeJSON(w, http.StatusOK, observationsResponse{Observations: views})
}

func NewObservationsHandler(persister persister.Persister) *observationsHandler {
	return &observationsHandler{persister: persister}
}
