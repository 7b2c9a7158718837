package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/services"
)

type ClientHandler struct {
	Svc *services.LifecycleService
}

func NewClientHandler(svc *services.LifecycleService) *ClientHandler {
	return &ClientHandler{Svc: svc}
}

// pathID extracts the {id} route parameter; 0 means invalid.
func pathID(r *http.Request) uint {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0
	}
	return uint(id)
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	result, err := h.Svc.CreateClient(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, "client created", result)
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	clients, total, err := h.Svc.ListClients(limit, offset, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "clients listed", map[string]any{
		"items": clients, "total": total, "limit": limit, "offset": offset,
	})
}

// Get: GET /clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	client, err := h.Svc.GetClient(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "client found", client)
}

// Update: PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	var in services.UpdateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	client, err := h.Svc.UpdateClient(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "client updated", client)
}

// Delete: DELETE /clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	if err := h.Svc.DeleteClient(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "client deleted", map[string]any{"deleted": id})
}

// Deposit: POST /clients/{id}/deposit
func (h *ClientHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	newBalance, err := h.Svc.Deposit(id, body.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "deposit recorded", map[string]any{"newBalance": newBalance})
}

// Renew: POST /clients/{id}/renew
func (h *ClientHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	var body struct {
		FraisReactivation float64 `json:"fraisReactivation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	client, err := h.Svc.Renew(id, body.FraisReactivation)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "account renewed", client)
}

// Transactions: GET /clients/{id}/transactions — the client's ledger history.
func (h *ClientHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	entries, err := h.Svc.ClientTransactions(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "transactions listed", entries)
}

// Payout: POST /clients/{id}/payout
func (h *ClientHandler) Payout(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid client id", "invalid_id")
		return
	}
	result, err := h.Svc.Payout(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, "payout completed", result)
}
