// Package directory exposes the organization, team, and user endpoints.
package directory

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
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
	errCodeConflict         = "CONFLICT"
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

// Handler handles directory endpoints.
type Handler struct {
	storage storage.Storage
}

func NewHandler(store storage.Storage) *Handler {
	return &Handler{storage: store}
}

// Request types
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type CreateTeamRequest struct {
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}

type CreateUserRequest struct {
	Name   string `json:"name"`
	TeamID string `json:"team_id,omitempty"`
}

// CreateOrganization creates a new organization. Names are unique.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := ValidateName(name); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()
	existing, err := h.storage.Organizations().GetByName(ctx, name)
	if err != nil {
		log.Printf("create organization error: check name: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, errCodeConflict, "organization name already exists")
		return
	}

	org := models.NewOrganization(name)
	org.ID = uuid.New().String()
	if err := h.storage.Organizations().Create(ctx, org); err != nil {
		log.Printf("create organization error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonCreated(w, org)
}

// ListOrganizations returns all organizations.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.storage.Organizations().List(r.Context())
	if err != nil {
		log.Printf("list organizations error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}
	jsonOK(w, orgs)
}

// CreateTeam creates a new team under an existing organization.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := ValidateName(name); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	if req.OrganizationID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "organization_id is required")
		return
	}

	ctx := r.Context()
	org, err := h.storage.Organizations().GetByID(ctx, req.OrganizationID)
	if err != nil {
		log.Printf("create team error: check organization: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if org == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "organization not found")
		return
	}

	team := models.NewTeam(name, org.ID)
	team.ID = uuid.New().String()
	if err := h.storage.Teams().Create(ctx, team); err != nil {
		log.Printf("create team error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonCreated(w, team)
}

// ListTeams returns all teams, optionally filtered by organization.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := r.URL.Query().Get("organization_id")

	var teams []*models.Team
	var err error
	if orgID != "" {
		teams, err = h.storage.Teams().ListByOrganization(ctx, orgID)
	} else {
		teams, err = h.storage.Teams().List(ctx)
	}
	if err != nil {
		log.Printf("list teams error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	jsonOK(w, teams)
}

// CreateUser creates a new user, optionally attached to a team.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := ValidateName(name); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()
	if req.TeamID != "" {
		team, err := h.storage.Teams().GetByID(ctx, req.TeamID)
		if err != nil {
			log.Printf("create user error: check team: %v", err)
			jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
			return
		}
		if team == nil {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "team not found")
			return
		}
	}

	user := models.NewUser(name, req.TeamID)
	user.ID = uuid.New().String()
	if err := h.storage.Users().Create(ctx, user); err != nil {
		log.Printf("create user error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonCreated(w, user)
}

// ListUsers returns all users, optionally filtered by team.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.URL.Query().Get("team_id")

	var users []*models.User
	var err error
	if teamID != "" {
		users, err = h.storage.Users().ListByTeam(ctx, teamID)
	} else {
		users, err = h.storage.Users().List(ctx)
	}
	if err != nil {
		log.Printf("list users error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	jsonOK(w, users)
}
