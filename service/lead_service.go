// file: service/lead_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lead-crm-api/logger"
	"lead-crm-api/model"
	"lead-crm-api/repository"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrNotLeadOwner     = errors.New("you can only access your own leads")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNotCustomerOwner = errors.New("you can only access your own customers")
)

const leadCacheTTL = 10 * time.Minute

// LeadService handles lead CRUD with a cache-aside listing strategy and the
// transactional conversion of a lead into a customer.
type LeadService struct {
	db           *sql.DB
	leadRepo     repository.ILeadRepository
	customerRepo repository.ICustomerRepository
	redisClient  *redis.Client
}

func NewLeadService(db *sql.DB, leadRepo repository.ILeadRepository,
	customerRepo repository.ICustomerRepository, redisClient *redis.Client) *LeadService {
	return &LeadService{
		db:           db,
		leadRepo:     leadRepo,
		customerRepo: customerRepo,
		redisClient:  redisClient,
	}
}

func leadCacheKey(userID int) string {
	return fmt.Sprintf("leads:%d", userID)
}

func (s *LeadService) invalidateCache(userID int) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(context.Background(), leadCacheKey(userID))
}

// CreateLead saves a new lead and invalidates the owner's listing cache.
func (s *LeadService) CreateLead(userID int, req model.LeadRequest) (*model.Lead, error) {
	status := req.Status
	if status == "" {
		status = "new"
	}

	lead := &model.Lead{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		City:    req.City,
		Status:  status,
		Notes:   req.Notes,
	}
	if err := s.leadRepo.CreateLead(lead); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return lead, nil
}

// ListLeadsForUser lists the user's leads, utilizing a cache-aside strategy.
func (s *LeadService) ListLeadsForUser(userID int) ([]*model.Lead, error) {
	ctx := context.Background()
	cacheKey := leadCacheKey(userID)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var leads []*model.Lead
			if err := json.Unmarshal([]byte(cached), &leads); err == nil {
				return leads, nil
			}
		}
	}

	leads, err := s.leadRepo.GetLeadsByUserID(userID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(leads); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, leadCacheTTL)
		}
	}

	return leads, nil
}

// GetLead returns one lead after an ownership check.
func (s *LeadService) GetLead(userID, leadID int) (*model.Lead, error) {
	lead, err := s.leadRepo.GetLeadByID(leadID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if lead.UserID != userID {
		return nil, ErrNotLeadOwner
	}
	return lead, nil
}

func (s *LeadService) UpdateLead(userID, leadID int, req model.LeadRequest) (*model.Lead, error) {
	lead, err := s.GetLead(userID, leadID)
	if err != nil {
		return nil, err
	}

	lead.Name = req.Name
	lead.Email = req.Email
	lead.Phone = req.Phone
	lead.Company = req.Company
	lead.Address = req.Address
	lead.City = req.City
	if req.Status != "" {
		lead.Status = req.Status
	}
	lead.Notes = req.Notes

	if err := s.leadRepo.UpdateLead(lead); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return lead, nil
}

func (s *LeadService) DeleteLead(userID, leadID int) error {
	if _, err := s.GetLead(userID, leadID); err != nil {
		return err
	}
	if err := s.leadRepo.DeleteLead(leadID); err != nil {
		return err
	}
	s.invalidateCache(userID)
	return nil
}

// ConvertLead turns a lead into a customer. The customer insert and the lead
// delete happen in one transaction so a crash cannot leave the record in both
// tables.
func (s *LeadService) ConvertLead(ctx context.Context, userID, leadID int) (*model.Customer, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"lead_id": leadID,
	})
	log.Info("Starting lead conversion")

	lead, err := s.GetLead(userID, leadID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	customer := &model.Customer{
		UserID:  lead.UserID,
		Name:    lead.Name,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Company: lead.Company,
		Address: lead.Address,
		City:    lead.City,
		Notes:   lead.Notes,
	}
	if err := s.customerRepo.CreateCustomerTx(tx, customer); err != nil {
		return nil, fmt.Errorf("could not create customer record: %w", err)
	}

	if err := s.leadRepo.DeleteLeadTx(tx, lead.ID); err != nil {
		return nil, fmt.Errorf("could not delete converted lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateCache(userID)
	log.Info("Lead converted successfully")
	return customer, nil
}
