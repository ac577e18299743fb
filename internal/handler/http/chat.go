package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/internal/service/chat"
)

const missingMessage = "Missing message in request body"

type chatRequest struct {
	Message           string        `json:"message"`
	History           []historyItem `json:"history"`
	SystemInstruction string        `json:"systemInstruction"`
	Provider          string        `json:"provider"`
}

// historyItem takes the OpenAI {role, content}, plain {role, text} and
// Gemini {role, parts: [{text}]} shapes.
type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Text    string `json:"text"`
	Parts   []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

func (h historyItem) message() generator.Message {
	content := h.Content
	if len(content) == 0 {
		content = h.Text
	}
	if len(content) == 0 && len(h.Parts) > 0 {
		texts := make([]string, 0, len(h.Parts))
		for _, part := range h.Parts {
			texts = append(texts, part.Text)
		}
		content = strings.Join(texts, "")
	}

	return generator.Message{
		Role:    generator.NormalizeRole(h.Role),
		Content: content,
	}
}

type chatResponse struct {
	Response string `json:"response"`
}

type chatHandler struct {
	svc *chat.Service
}

func (h *chatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, missingMessage)
		return
	}

	if len(strings.TrimSpace(req.Message)) == 0 {
		writeError(w, http.StatusBadRequest, missingMessage)
		return
	}

	history := make([]generator.Message, 0, len(req.History))
	for _, item := range req.History {
		history = append(history, item.message())
	}

	reply, err := h.svc.Chat(r.Context(), chat.Request{
		Provider:          req.Provider,
		History:           history,
		Message:           req.Message,
		SystemInstruction: req.SystemInstruction,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "chat failed", "provider", req.Provider, "error", err)
		writeError(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func NewChatHandler(svc *chat.Service) *chatHandler {
	return &chatHandler{svc: svc}
}
