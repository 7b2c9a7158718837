package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

// Client CRUD beyond the lifecycle transitions. Balance, engagement, expiry
// and status are owned by the lifecycle operations and are not writable here.

type UpdateClientInput struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Location  *string `json:"location"`
	AgentID   *uint   `json:"agentId"`
}

// ListClients returns a page of clients, optionally filtered on name.
func (s *LifecycleService) ListClients(limit, offset int, q string) ([]models.Client, int64, error) {
	dbq := s.DB.Model(&models.Client{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(firstname) LIKE ? OR lower(lastname) LIKE ?", like, like)
	}
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count clients", Err: err}
	}
	var clients []models.Client
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "list clients", Err: err}
	}
	return clients, total, nil
}

// UpdateClient edits contact fields only.
func (s *LifecycleService) UpdateClient(clientID uint, in UpdateClientInput) (*models.Client, error) {
	var client models.Client
	if err := s.DB.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "client", ID: clientID}
		}
		return nil, &PersistenceError{Op: "load client", Err: err}
	}
	if in.Firstname != nil {
		client.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		client.Lastname = *in.Lastname
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Location != nil {
		client.Location = *in.Location
	}
	if in.AgentID != nil {
		var count int64
		if err := s.DB.Model(&models.Agent{}).Where("id = ?", *in.AgentID).Count(&count).Error; err != nil {
			return nil, &PersistenceError{Op: "check agent", Err: err}
		}
		if count == 0 {
			return nil, &NotFoundError{Entity: "agent", ID: *in.AgentID}
		}
		client.AgentID = *in.AgentID
	}
	if err := s.DB.Save(&client).Error; err != nil {
		return nil, &PersistenceError{Op: "update client", Err: err}
	}
	return &client, nil
}

// ClientTransactions returns the client's ledger history, newest first.
func (s *LifecycleService) ClientTransactions(clientID uint) ([]models.Transaction, error) {
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error; err != nil {
		return nil, &PersistenceError{Op: "check client", Err: err}
	}
	if count == 0 {
		return nil, &NotFoundError{Entity: "client", ID: clientID}
	}
	var entries []models.Transaction
	if err := s.DB.Where("client_id = ?", clientID).Order("id desc").Find(&entries).Error; err != nil {
		return nil, &PersistenceError{Op: "list transactions", Err: err}
	}
	return entries, nil
}

// DeleteClient removes a client and its companion ticket. Deletion is
// refused while ledger entries reference the client: the audit trail would
// otherwise be orphaned.
func (s *LifecycleService) DeleteClient(clientID uint) error {
	var client models.Client
	if err := s.DB.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: clientID}
		}
		return &PersistenceError{Op: "load client", Err: err}
	}
	var txCount int64
	if err := s.DB.Model(&models.Transaction{}).Where("client_id = ?", clientID).Count(&txCount).Error; err != nil {
		return &PersistenceError{Op: "count transactions", Err: err}
	}
	if txCount > 0 {
		return &ConflictError{Message: "client has ledger entries and cannot be deleted"}
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", clientID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, clientID).Error
	})
	if err != nil {
		return &PersistenceError{Op: "delete client", Err: err}
	}
	return nil
}
