package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/observation"
)

type analysisHandler struct {
	svc *analysis.Service
}

func (h *analysisHandler) Handle(w http.ResponseWriter, r *http.Request) {
	req, ok := analysisRequest(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Analyze(r.Context(), req)
	if errors.Is(err, analysis.ErrNoData) {
		writeError(w, http.StatusNotFound, "No data found for series "+req.SeriesId)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "analysis failed", "series", req.SeriesId, "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Chart answers with a PNG of the series and its fit. The scale query
// parameter picks the linear (default) or logarithmic fit.
func (h *analysisHandler) Chart(w http.ResponseWriter, r *http.Request) {
	req, ok := analysisRequest(w, r)
	if !ok {
		return
	}

	scale, err := analysis.ParseScale(r.URL.Query().Get("scale"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "scale must be linear or log")
		return
	}

	img, err := h.svc.Chart(r.Context(), req, scale)
	if errors.Is(err, analysis.ErrNoData) {
		writeError(w, http.StatusNotFound, "No data found for series "+req.SeriesId)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "chart failed", "series", req.SeriesId, "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		slog.ErrorContext(r.Context(), "failed to write chart", "series", req.SeriesId, "error", err)
	}
}

// analysisRequest reads the path and query parameters shared by the
// report and the chart. It writes a 400 and returns false on bad input.
func analysisRequest(w http.ResponseWriter, r *http.Request) (analysis.Request, bool) {
	req := analysis.Request{SeriesId: mux.Vars(r)["seriesId"]}

	q := r.URL.Query()

	var err error

	if req.Summarize, err = boolParam(q.Get("summary")); err != nil {
		writeError(w, http.StatusBadRequest, "summary must be a boolean")
		return req, false
	}

	if req.Clean, err = boolParam(q.Get("clean")); err != nil {
		writeError(w, http.StatusBadRequest, "clean must be a boolean")
		return req, false
	}

	if req.Normalize, err = boolParam(q.Get("normalize")); err != nil {
		writeError(w, http.StatusBadRequest, "normalize must be a boolean")
		return req, false
	}

	if raw := q.Get("window"); len(raw) > 0 {
		if req.MovingAverage, err = strconv.Atoi(raw); err != nil || req.MovingAverage < 1 {
			writeError(w, http.StatusBadRequest, "window must be a positive integer")
			return req, false
		}
	}

	if req.From, err = dayParam(q.Get("from")); err != nil {
		writeError(w, http.StatusBadRequest, "from must be a YYYY-MM-DD date")
		return req, false
	}

	if req.To, err = dayParam(q.Get("to")); err != nil {
		writeError(w, http.StatusBadRequest, "to must be a YYYY-MM-DD date")
		return req, false
	}

	return req, true
}

func boolParam(raw string) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func dayParam(raw string) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, nil
	}
	return observation.ParseDay(raw)
}

func NewAnalysisHandler(svc *analysis.Service) *analysisHandler {
	return &analysisHandler{svc: svc}
}
