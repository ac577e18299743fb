package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/w-h-a/fred/internal/service/indexer"
	"github.com/w-h-a/fred/internal/service/ingest"
)

type ingestResponse struct {
	Results []ingest.Result `json:"results"`
}

type upsertResponse struct {
	Upserted int `json:"upserted"`
}

type ingestHandler struct {
	svc *ingest.Service
}

// Handle runs ingest for the series in the path, or for every configured
// series when the path names none.
func (h *ingestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var (
		results []ingest.Result
		err     error
	)

	if seriesId := strings.TrimSpace(mux.Vars(r)["seriesId"]); len(seriesId) > 0 {
		results, err = h.svc.RunSeries(r.Context(), strings.ToUpper(seriesId))
	} else {
		results, err = h.svc.Run(r.Context())
	}

	if err != nil {
		slog.ErrorContext(r.Context(), "ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Results: results})
}

func NewIngestHandler(svc *ingest.Service) *ingestHandler {
	return &ingestHandler{svc: svc}
}

type upsertHandler struct {
	svc *indexer.Service
}

func (h *upsertHandler) Handle(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UpsertAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "upsert failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{Upserted: n})
}

func NewUpsertHandler(svc *indexer.Service) *upsertHandler {
	return &upsertHandler{svc: svc}
}
