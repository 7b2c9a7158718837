package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/models"
)

// TicketHandler exposes the companion case files. Tickets are created by the
// lifecycle engine alongside each client; this handler only reads and edits
// them.
type TicketHandler struct {
	DB *gorm.DB
}

func NewTicketHandler(db *gorm.DB) *TicketHandler { return &TicketHandler{DB: db} }

// List: GET /tickets
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Order("id desc")
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var tickets []models.Ticket
	if err := dbq.Find(&tickets).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not list tickets", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "tickets listed", tickets)
}

// Get: GET /tickets/{id}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid ticket id", "invalid_id")
		return
	}
	var ticket models.Ticket
	if err := h.DB.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "ticket not found", "not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "could not load ticket", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "ticket found", ticket)
}

// Update: PUT /tickets/{id} — status and description only.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid ticket id", "invalid_id")
		return
	}
	var ticket models.Ticket
	if err := h.DB.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "ticket not found", "not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "could not load ticket", "internal_error")
		return
	}
	var in struct {
		Status      *string `json:"status"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	if in.Status != nil {
		switch *in.Status {
		case models.TicketActive, models.TicketClosed, models.TicketPending:
			ticket.Status = *in.Status
		default:
			httpx.JSONError(w, http.StatusBadRequest, "status must be active, closed or pending", "validation_failed")
			return
		}
	}
	if in.Description != nil {
		ticket.Description = *in.Description
	}
	if err := h.DB.Save(&ticket).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not update ticket", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "ticket updated", ticket)
}
