package server

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodset/internal/shared"
)

const maxWebhookBody = 1 << 20

type message struct {
	Message string `json:"message"`
}

// WebhookHandler acknowledges POSTed events and rejects every other method.
type WebhookHandler struct {
	logger *log.Logger
}

func NewWebhookHandler(logger *log.Logger) *WebhookHandler {
	return &WebhookHandler{logger: logger}
}

func (h *WebhookHandler) Routes() []string {
	return []string{"/webhook"}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, message{"Webhook not received!"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
	}
	h.logger.Info("webhook received", "bytes", len(body), "body", string(body))

	writeJSON(w, http.StatusOK, message{"Webhook received successfully!"})
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
