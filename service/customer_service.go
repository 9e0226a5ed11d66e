package service

import (
	"database/sql"
	"lead-crm-api/model"
	"lead-crm-api/repository"
)

// CustomerService handles customer-related business logic. Creation goes
// through LeadService.ConvertLead; this service covers the rest of the CRUD.
type CustomerService struct {
	customerRepo repository.ICustomerRepository
}

func NewCustomerService(customerRepo repository.ICustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) ListCustomersForUser(userID int) ([]*model.Customer, error) {
	return s.customerRepo.GetCustomersByUserID(userID)
}

func (s *CustomerService) GetCustomer(userID, customerID int) (*model.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if customer.UserID != userID {
		return nil, ErrNotCustomerOwner
	}
	return customer, nil
}

func (s *CustomerService) UpdateCustomer(userID, customerID int, req model.CustomerRequest) (*model.Customer, error) {
	customer, err := s.GetCustomer(userID, customerID)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Company = req.Company
	customer.Address = req.Address
	customer.City = req.City
	customer.Notes = req.Notes

	if err := s.customerRepo.UpdateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) DeleteCustomer(userID, customerID int) error {
	if _, err := s.GetCustomer(userID, customerID); err != nil {
		return err
	}
	return s.customerRepo.DeleteCustomer(customerID)
}
