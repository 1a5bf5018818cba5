// Package inbox exposes the user-facing read path: visible alerts,
// snoozed alerts, and the read/unread/snooze actions.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	alertsvc "github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/models"
)

// Response helpers
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeNotFound      = "NOT_FOUND"
	errCodeInternalError = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Handler handles inbox endpoints.
type Handler struct {
	service *alertsvc.Service
}

func NewHandler(service *alertsvc.Service) *Handler {
	return &Handler{service: service}
}

// VisibleAlerts returns the alerts the user can currently see.
func (h *Handler) VisibleAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	alerts, err := h.service.VisibleAlerts(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "visible alerts", err)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	jsonOK(w, alerts)
}

// SnoozedAlerts returns the user's currently snoozed alerts.
func (h *Handler) SnoozedAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	alerts, err := h.service.SnoozedAlerts(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "snoozed alerts", err)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	jsonOK(w, alerts)
}

// MarkRead marks the alert read for the user.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "read", h.service.MarkRead)
}

// MarkUnread marks the alert unread for the user.
func (h *Handler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "unread", h.service.MarkUnread)
}

// Snooze snoozes the alert for the user until end of the current UTC day.
func (h *Handler) Snooze(w http.ResponseWriter, r *http.Request) {
	h.ack(w, r, "snoozed", h.service.Snooze)
}

func (h *Handler) ack(w http.ResponseWriter, r *http.Request, status string, fn func(ctx context.Context, userID, alertID string) error) {
	userID := chi.URLParam(r, "userID")
	alertID := chi.URLParam(r, "alertID")
	if err := fn(r.Context(), userID, alertID); err != nil {
		h.writeServiceError(w, status, err)
		return
	}
	jsonOK(w, map[string]string{"status": status, "alert_id": alertID, "user_id": userID})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, alertsvc.ErrUserNotFound), errors.Is(err, alertsvc.ErrAlertNotFound):
		jsonError(w, http.StatusNotFound, errCodeNotFound, err.Error())
	default:
		log.Printf("%s error: %v", op, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
	}
}
