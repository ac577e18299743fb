package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/w-h-a/fred/internal/service/retrieval"
	"github.com/w-h-a/fred/storer"
)

const (
	defaultSearchTopK = 5
	maxSearchTopK     = 100
)

type searchResponse struct {
	Matches []storer.Match `json:"matches"`
}

type searchHandler struct {
	retrieval *retrieval.Service
}

func (h *searchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) == 0 {
		writeError(w, http.StatusBadRequest, "Missing q query parameter")
		return
	}

	topK := defaultSearchTopK
	if raw := r.URL.Query().Get("topK"); len(raw) > 0 {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 1 || k > maxSearchTopK {
			writeError(w, http.StatusBadRequest, "topK must be an integer between 1 and 100")
			return
		}
		topK = k
	}

	matches, err := h.retrieval.Query(r.Context(), query, topK)
	if err != nil {
		slog.ErrorContext(r.Context(), "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Matches: matches})
}

func NewSearchHandler(retrieval *retrieval.Service) *searchHandler {
	return &searchHandler{retrieval: retrieval}
}
