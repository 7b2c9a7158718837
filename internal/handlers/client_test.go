package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/models"
	"github.com/kdiawara/sika/internal/services"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Agent{}, &models.Client{}, &models.Ticket{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedHandlerFixtures(t *testing.T, db *gorm.DB) (models.Agent, models.Client) {
	t.Helper()
	agent := models.Agent{Firstname: "Awa", Lastname: "Traoré"}
	if err := db.Create(&agent).Error; err != nil {
		t.Fatalf("agent: %v", err)
	}
	client := models.Client{
		Firstname: "Moussa", Lastname: "Keita", Phone: "+22370000000", Location: "Sikasso",
		AgentID: agent.ID, AccountBalance: 100, MontantEngagement: 1000,
		AccountExpiresAt: time.Now().Add(24 * time.Hour), Status: models.StatusActive,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return agent, client
}

func decodeEnvelope(t *testing.T, body []byte) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	return env
}

func TestClientCreateHandler(t *testing.T) {
	db := setupHandlerDB(t)
	agent, _ := seedHandlerFixtures(t, db)
	h := NewClientHandler(services.NewLifecycleService(db))

	body := fmt.Sprintf(`{"firstname":"Fatou","lastname":"Diallo","phone":"+22376000000","location":"Ségou","agentId":%d,"montantEngagement":1000}`, agent.ID)
	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	if !env.Success {
		t.Fatalf("expected success envelope: %s", w.Body.String())
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["client"] == nil || data["ticket"] == nil {
		t.Fatalf("expected client+ticket in data: %#v", env.Data)
	}

	// Missing fields -> 400 with failure envelope.
	bad := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"firstname":"X"}`))
	w = httptest.NewRecorder()
	h.Create(w, bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if env := decodeEnvelope(t, w.Body.Bytes()); env.Success {
		t.Fatalf("expected failure envelope: %s", w.Body.String())
	}
}

func TestDepositHandler(t *testing.T) {
	db := setupHandlerDB(t)
	_, client := seedHandlerFixtures(t, db)
	h := NewClientHandler(services.NewLifecycleService(db))

	deposit := func(id string, amount float64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/clients/"+id+"/deposit",
			strings.NewReader(fmt.Sprintf(`{"amount":%g}`, amount)))
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		h.Deposit(w, req)
		return w
	}

	// Scenario: deposit equal to the engagement succeeds.
	w := deposit(strconv.Itoa(int(client.ID)), 1000)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	data := env.Data.(map[string]any)
	if data["newBalance"].(float64) != 1100 {
		t.Fatalf("expected newBalance 1100, got %v", data["newBalance"])
	}

	// Mismatched amount -> 400 and the message names both values.
	w = deposit(strconv.Itoa(int(client.ID)), 500)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	env = decodeEnvelope(t, w.Body.Bytes())
	if !strings.Contains(env.Message, "500") || !strings.Contains(env.Message, "1000") {
		t.Fatalf("message must name both amounts: %q", env.Message)
	}

	// Unknown client -> 404.
	w = deposit("9999", 1000)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	// Expired account -> 403.
	if err := db.Model(&models.Client{}).Where("id = ?", client.ID).
		Update("status", models.StatusExpired).Error; err != nil {
		t.Fatalf("expire: %v", err)
	}
	w = deposit(strconv.Itoa(int(client.ID)), 1000)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPayoutHandler(t *testing.T) {
	db := setupHandlerDB(t)
	_, client := seedHandlerFixtures(t, db)
	if err := db.Model(&models.Client{}).Where("id = ?", client.ID).
		Update("account_balance", 5000).Error; err != nil {
		t.Fatalf("set balance: %v", err)
	}
	h := NewClientHandler(services.NewLifecycleService(db))

	payout := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/clients/"+id+"/payout", nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		h.Payout(w, req)
		return w
	}

	w := payout(strconv.Itoa(int(client.ID)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	data := env.Data.(map[string]any)
	if data["amountPaidOut"].(float64) != 5000 {
		t.Fatalf("expected amountPaidOut 5000, got %v", data["amountPaidOut"])
	}
	if uint(data["clientId"].(float64)) != client.ID {
		t.Fatalf("expected clientId %d, got %v", client.ID, data["clientId"])
	}

	// Balance is now zero -> 400, no status change, no extra ledger row.
	w = payout(strconv.Itoa(int(client.ID)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var txCount int64
	db.Model(&models.Transaction{}).Where("client_id = ?", client.ID).Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected exactly one Retrait entry, got %d", txCount)
	}
}

func TestRenewHandler(t *testing.T) {
	db := setupHandlerDB(t)
	_, client := seedHandlerFixtures(t, db)
	h := NewClientHandler(services.NewLifecycleService(db))

	id := strconv.Itoa(int(client.ID))
	req := httptest.NewRequest(http.MethodPost, "/clients/"+id+"/renew",
		strings.NewReader(`{"fraisReactivation":1500}`))
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.Renew(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	data := env.Data.(map[string]any)
	if data["montantEngagement"].(float64) != 1500 {
		t.Fatalf("expected engagement 1500, got %v", data["montantEngagement"])
	}
	if data["status"].(string) != models.StatusActive {
		t.Fatalf("expected active, got %v", data["status"])
	}
}

func TestAgentDeleteRestricted(t *testing.T) {
	db := setupHandlerDB(t)
	agent, _ := seedHandlerFixtures(t, db)
	h := NewAgentHandler(db)

	id := strconv.Itoa(int(agent.ID))
	req := httptest.NewRequest(http.MethodDelete, "/agents/"+id, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while clients reference the agent, got %d", w.Code)
	}

	// Remove the client, then deletion goes through.
	if err := db.Where("agent_id = ?", agent.ID).Delete(&models.Client{}).Error; err != nil {
		t.Fatalf("delete clients: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/agents/"+id, nil)
	req.SetPathValue("id", id)
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}
