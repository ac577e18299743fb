package http

import (
	"net/http"

	"github.com/w-h-a/fred/internal/service/chat"
)

type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

type healthHandler struct {
	chat *chat.Service
}

// Handle reports liveness and the chat providers this process can route to.
func (h *healthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rsp := healthResponse{Status: "ok", Providers: []string{}}

	if h.chat != nil {
		rsp.Providers = h.chat.Providers()
	}

	writeJSON(w, http.StatusOK, rsp)
}

func NewHealthHandler(chat *chat.Service) *healthHandler {
	return &healthHandler{chat: chat}
}
