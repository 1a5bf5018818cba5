// Package alerts exposes the admin alert endpoints: creation, listing,
// updates, archiving, analytics, and the manual reminder trigger.
package alerts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	alertsvc "github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/reminder"
	"github.com/good-yellow-bee/alerthub/internal/storage"
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
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeInternalError    = "INTERNAL_ERROR"
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

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Handler handles admin alert endpoints.
type Handler struct {
	service *alertsvc.Service
	engine  *reminder.Engine
}

func NewHandler(service *alertsvc.Service, engine *reminder.Engine) *Handler {
	return &Handler{service: service, engine: engine}
}

// Request types
type CreateRequest struct {
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Severity          string    `json:"severity"`
	DeliveryType      string    `json:"delivery_type"`
	ReminderFrequency int       `json:"reminder_frequency_hours"`
	StartTime         time.Time `json:"start_time"`
	ExpiryTime        time.Time `json:"expiry_time"`
	Visibility        string    `json:"visibility"`
	OrganizationID    string    `json:"organization_id,omitempty"`
	TeamID            string    `json:"team_id,omitempty"`
	UserID            string    `json:"user_id,omitempty"`
}

type UpdateRequest struct {
	Title             *string    `json:"title,omitempty"`
	Message           *string    `json:"message,omitempty"`
	Severity          *string    `json:"severity,omitempty"`
	DeliveryType      *string    `json:"delivery_type,omitempty"`
	ReminderFrequency *int       `json:"reminder_frequency_hours,omitempty"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	ExpiryTime        *time.Time `json:"expiry_time,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

// Create creates a new alert and fans it out to its audience links.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if err := ValidateTitle(req.Title); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	severity, err := ValidateSeverity(req.Severity)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	deliveryType, err := ValidateDeliveryType(req.DeliveryType)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	visibility, err := ValidateVisibility(req.Visibility)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	if err := ValidateWindow(req.StartTime, req.ExpiryTime); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	alert, err := h.service.Create(r.Context(), alertsvc.CreateInput{
		Title:             strings.TrimSpace(req.Title),
		Message:           req.Message,
		Severity:          severity,
		DeliveryType:      deliveryType,
		ReminderFrequency: req.ReminderFrequency,
		StartTime:         req.StartTime,
		ExpiryTime:        req.ExpiryTime,
		Visibility:        visibility,
		OrganizationID:    req.OrganizationID,
		TeamID:            req.TeamID,
		UserID:            req.UserID,
	})
	if err != nil {
		h.writeServiceError(w, "create alert", err)
		return
	}
	jsonCreated(w, alert)
}

// List returns non-archived alerts, optionally filtered by severity,
// active flag, or visibility.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter storage.AlertFilter

	if s := r.URL.Query().Get("severity"); s != "" {
		severity, err := ValidateSeverity(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		filter.Severity = &severity
	}
	if v := r.URL.Query().Get("visibility"); v != "" {
		visibility, err := ValidateVisibility(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		filter.Visibility = &visibility
	}
	if a := r.URL.Query().Get("active"); a != "" {
		active, err := strconv.ParseBool(a)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "active must be a boolean")
			return
		}
		filter.Active = &active
	}

	alerts, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Printf("list alerts error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	jsonOK(w, alerts)
}

// GetByID returns a single alert.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	alert, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get alert", err)
		return
	}
	jsonOK(w, alert)
}

// Update applies a partial patch to an alert.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	input := alertsvc.UpdateInput{
		Title:             req.Title,
		Message:           req.Message,
		ReminderFrequency: req.ReminderFrequency,
		StartTime:         req.StartTime,
		ExpiryTime:        req.ExpiryTime,
		IsActive:          req.IsActive,
	}
	if req.Title != nil {
		if err := ValidateTitle(*req.Title); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
	}
	if req.Severity != nil {
		severity, err := ValidateSeverity(*req.Severity)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		input.Severity = &severity
	}
	if req.DeliveryType != nil {
		deliveryType, err := ValidateDeliveryType(*req.DeliveryType)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		input.DeliveryType = &deliveryType
	}

	alert, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, "update alert", err)
		return
	}
	jsonOK(w, alert)
}

// Archive soft-deletes an alert.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Archive(r.Context(), id); err != nil {
		h.writeServiceError(w, "archive alert", err)
		return
	}
	jsonOK(w, map[string]string{"status": "archived", "id": id})
}

// Analytics returns the reporting rollup.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.Analytics(r.Context())
	if err != nil {
		log.Printf("analytics error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonOK(w, analytics)
}

// TriggerReminders runs one synchronous reminder pass.
func (h *Handler) TriggerReminders(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.RunOnce(r.Context())
	if err != nil {
		log.Printf("trigger reminders error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonOK(w, stats)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, alertsvc.ErrOrganizationNotFound),
		errors.Is(err, alertsvc.ErrTeamNotFound),
		errors.Is(err, alertsvc.ErrUserNotFound),
		errors.Is(err, alertsvc.ErrAlertNotFound):
		jsonError(w, http.StatusNotFound, errCodeNotFound, err.Error())
	case errors.Is(err, alertsvc.ErrInvalidVisibility):
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
	default:
		log.Printf("%s error: %v", op, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
	}
}
