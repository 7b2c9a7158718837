package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/ledger"
	"github.com/kdiawara/sika/internal/models"
	"github.com/kdiawara/sika/validation"
)

// cycleDuration is the savings cycle: creation and renewal both set the
// expiry this far in the future.
const cycleDuration = 30 * 24 * time.Hour

// LifecycleService owns every mutation of a client account: creation,
// deposits, renewal, payout and the opportunistic status refresh. Each
// operation writes inside a single database transaction so the client row
// update and its ledger entry commit or roll back together; the status
// refresh commits separately so it survives a rejected operation.
type LifecycleService struct {
	DB *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService { return &LifecycleService{DB: db} }

type CreateClientInput struct {
	Firstname         string  `json:"firstname"`
	Lastname          string  `json:"lastname"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Location          string  `json:"location"`
	AgentID           uint    `json:"agentId"`
	MontantEngagement float64 `json:"montantEngagement"`
}

type CreateClientResult struct {
	Client models.Client `json:"client"`
	Ticket models.Ticket `json:"ticket"`
}

// CreateClient opens an account: zero balance, active, expiring one cycle
// from now, with its companion ticket and a FraisInscription ledger entry for
// the engagement amount charged at signup.
func (s *LifecycleService) CreateClient(in CreateClientInput) (*CreateClientResult, error) {
	v := validation.Violations{}
	validation.Required("firstname", in.Firstname, v)
	validation.Required("lastname", in.Lastname, v)
	validation.Required("phone", in.Phone, v)
	validation.Required("location", in.Location, v)
	validation.PositiveID("agentId", in.AgentID, v)
	validation.PositiveFloat("montantEngagement", in.MontantEngagement, v)
	if !v.Empty() {
		return nil, &ValidationError{Message: v.String()}
	}

	var agentCount int64
	if err := s.DB.Model(&models.Agent{}).Where("id = ?", in.AgentID).Count(&agentCount).Error; err != nil {
		return nil, &PersistenceError{Op: "check agent", Err: err}
	}
	if agentCount == 0 {
		return nil, &NotFoundError{Entity: "agent", ID: in.AgentID}
	}

	result := &CreateClientResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		client := models.Client{
			Firstname:         in.Firstname,
			Lastname:          in.Lastname,
			Email:             in.Email,
			Phone:             in.Phone,
			Location:          in.Location,
			AgentID:           in.AgentID,
			AccountBalance:    0,
			MontantEngagement: in.MontantEngagement,
			AccountExpiresAt:  time.Now().Add(cycleDuration),
			Status:            models.StatusActive,
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		ticket := models.Ticket{
			ClientID:    client.ID,
			Status:      models.TicketActive,
			Description: fmt.Sprintf("Ouverture de compte %s %s", client.Firstname, client.Lastname),
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		if _, err := ledger.Record(tx, client.ID, in.MontantEngagement, models.TypeFraisInscription, "Frais d'inscription"); err != nil {
			return err
		}
		result.Client = client
		result.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create client", Err: err}
	}
	return result, nil
}

// Deposit adds one engagement contribution to an active account. The amount
// must exactly match the client's engagement: this is a fixed-contribution
// product, not a free-form top-up.
func (s *LifecycleService) Deposit(clientID uint, amount float64) (float64, error) {
	client, err := s.refreshStatus(clientID)
	if err != nil {
		return 0, s.wrap("deposit", err)
	}
	if client.Status == models.StatusExpired {
		return 0, &ForbiddenError{Message: "cannot deposit to an expired account, renew first"}
	}
	if amount <= 0 {
		return 0, &ValidationError{Message: "deposit amount must be positive"}
	}
	if amount != client.MontantEngagement {
		return 0, &ValidationError{Message: fmt.Sprintf(
			"deposit amount %g does not match engagement amount %g", amount, client.MontantEngagement)}
	}
	var newBalance float64
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Client{}).Where("id = ?", client.ID).
			Update("account_balance", gorm.Expr("account_balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if _, err := ledger.Record(tx, client.ID, amount, models.TypeDepot, "Dépôt"); err != nil {
			return err
		}
		var reloaded models.Client
		if err := tx.Select("account_balance").First(&reloaded, client.ID).Error; err != nil {
			return err
		}
		newBalance = reloaded.AccountBalance
		return nil
	})
	if err != nil {
		return 0, s.wrap("deposit", err)
	}
	return newBalance, nil
}

// Renew brings an account current: it re-prices the engagement to the
// reactivation fee, resets the 30 day clock and reactivates the account.
// Renewal never touches the balance; the fee is recorded on the ledger only.
func (s *LifecycleService) Renew(clientID uint, fraisReactivation float64) (*models.Client, error) {
	if fraisReactivation <= 0 {
		return nil, &ValidationError{Message: "fraisReactivation must be positive"}
	}
	client, err := s.loadClient(s.DB, clientID)
	if err != nil {
		return nil, s.wrap("renew", err)
	}
	var updated models.Client
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		values := map[string]interface{}{
			"montant_engagement": fraisReactivation,
			"account_expires_at": time.Now().Add(cycleDuration),
			"status":             models.StatusActive,
		}
		if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(values).Error; err != nil {
			return err
		}
		if _, err := ledger.Record(tx, client.ID, fraisReactivation, models.TypeFraisReactivation, "Frais de réactivation"); err != nil {
			return err
		}
		return tx.First(&updated, client.ID).Error
	})
	if err != nil {
		return nil, s.wrap("renew", err)
	}
	return &updated, nil
}

type PayoutResult struct {
	AmountPaidOut float64 `json:"amountPaidOut"`
	ClientID      uint    `json:"clientId"`
}

// Payout is the full lump-sum withdrawal: it zeroes the balance, expires the
// account and records a Retrait for the amount paid out. It is allowed on an
// expired account so a lapsed client can still withdraw residual funds.
func (s *LifecycleService) Payout(clientID uint) (*PayoutResult, error) {
	result := &PayoutResult{ClientID: clientID}
	client, err := s.refreshStatus(clientID)
	if err != nil {
		return nil, s.wrap("payout", err)
	}
	if client.AccountBalance <= 0 {
		return nil, &ValidationError{Message: "balance is zero"}
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent mutation between read and write: the
		// update only applies if the balance is still what we read.
		res := tx.Model(&models.Client{}).
			Where("id = ? AND account_balance = ?", client.ID, client.AccountBalance).
			Updates(map[string]interface{}{"account_balance": 0, "status": models.StatusExpired})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("concurrent balance change, retry payout")
		}
		if _, err := ledger.Record(tx, client.ID, client.AccountBalance, models.TypeRetrait, "Retrait"); err != nil {
			return err
		}
		result.AmountPaidOut = client.AccountBalance
		return nil
	})
	if err != nil {
		return nil, s.wrap("payout", err)
	}
	return result, nil
}

// GetClient loads one client, refreshing a stale active status on the way.
func (s *LifecycleService) GetClient(clientID uint) (*models.Client, error) {
	client, err := s.refreshStatus(clientID)
	if err != nil {
		return nil, s.wrap("get client", err)
	}
	return client, nil
}

// loadClient fetches a client by id, mapping a missing row to NotFoundError.
func (s *LifecycleService) loadClient(tx *gorm.DB, clientID uint) (*models.Client, error) {
	var client models.Client
	if err := tx.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "client", ID: clientID}
		}
		return nil, err
	}
	return &client, nil
}

// refreshStatus applies the opportunistic status refresh: an active account
// past its expiry flips to expired right here, so per-client reads never
// observe a stale active status. The flip is committed on its own, outside
// any mutation transaction, so it sticks even when the operation that
// triggered the read is then rejected. No ledger entry is written for this
// passive transition.
func (s *LifecycleService) refreshStatus(clientID uint) (*models.Client, error) {
	client, err := s.loadClient(s.DB, clientID)
	if err != nil {
		return nil, err
	}
	if client.Status == models.StatusActive && client.Lapsed(time.Now()) {
		if err := s.DB.Model(client).Update("status", models.StatusExpired).Error; err != nil {
			return nil, err
		}
		client.Status = models.StatusExpired
	}
	return client, nil
}

// wrap keeps typed domain errors as-is and folds anything else into a
// PersistenceError so handlers can map statuses with errors.As.
func (s *LifecycleService) wrap(op string, err error) error {
	var ve *ValidationError
	var nf *NotFoundError
	var fe *ForbiddenError
	var ce *ConflictError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &fe) || errors.As(err, &ce) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
