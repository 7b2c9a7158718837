package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/models"
	"github.com/kdiawara/sika/validation"
)

// AgentHandler covers agent administration. Agents are created via admin
// action and referenced by clients; deletion is restricted while references
// exist so no client is ever orphaned.
type AgentHandler struct {
	DB *gorm.DB
}

func NewAgentHandler(db *gorm.DB) *AgentHandler { return &AgentHandler{DB: db} }

// Create: POST /agents
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Email     string `json:"email"`
		Location  string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("firstname", in.Firstname, v)
	validation.Required("lastname", in.Lastname, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, v.String(), "validation_failed")
		return
	}
	agent := models.Agent{Firstname: in.Firstname, Lastname: in.Lastname, Email: in.Email, Location: in.Location}
	if err := h.DB.Create(&agent).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not create agent", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusCreated, "agent created", agent)
}

// List: GET /agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	var agents []models.Agent
	if err := h.DB.Order("id desc").Find(&agents).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not list agents", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "agents listed", agents)
}

// Get: GET /agents/{id}
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid agent id", "invalid_id")
		return
	}
	var agent models.Agent
	if err := h.DB.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "agent not found", "not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "could not load agent", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "agent found", agent)
}

// Update: PUT /agents/{id}
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid agent id", "invalid_id")
		return
	}
	var agent models.Agent
	if err := h.DB.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "agent not found", "not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "could not load agent", "internal_error")
		return
	}
	var in struct {
		Firstname *string `json:"firstname"`
		Lastname  *string `json:"lastname"`
		Email     *string `json:"email"`
		Location  *string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	if in.Firstname != nil {
		agent.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		agent.Lastname = *in.Lastname
	}
	if in.Email != nil {
		agent.Email = *in.Email
	}
	if in.Location != nil {
		agent.Location = *in.Location
	}
	if err := h.DB.Save(&agent).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not update agent", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "agent updated", agent)
}

// Delete: DELETE /agents/{id} — restricted while clients reference the agent.
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid agent id", "invalid_id")
		return
	}
	var agent models.Agent
	if err := h.DB.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "agent not found", "not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "could not load agent", "internal_error")
		return
	}
	var clientCount int64
	if err := h.DB.Model(&models.Client{}).Where("agent_id = ?", id).Count(&clientCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not check agent references", "internal_error")
		return
	}
	if clientCount > 0 {
		httpx.JSONError(w, http.StatusConflict, "agent still has assigned clients", "conflict")
		return
	}
	if err := h.DB.Delete(&models.Agent{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not delete agent", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "agent deleted", map[string]any{"deleted": id})
}
