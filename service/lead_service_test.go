// file: service/lead_service_test.go

package service

import (
	"context"
	"database/sql"
	"lead-crm-api/model"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockLeadRepo is a mock for repository.ILeadRepository.
type mockLeadRepo struct{ mock.Mock }

func (m *mockLeadRepo) CreateLead(lead *model.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}
func (m *mockLeadRepo) GetLeadByID(id int) (*model.Lead, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}
func (m *mockLeadRepo) GetLeadsByUserID(userID int) ([]*model.Lead, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Lead), args.Error(1)
}
func (m *mockLeadRepo) UpdateLead(lead *model.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}
func (m *mockLeadRepo) DeleteLead(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *mockLeadRepo) DeleteLeadTx(tx *sql.Tx, id int) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

// mockCustomerRepo is a mock for repository.ICustomerRepository.
type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) CreateCustomerTx(tx *sql.Tx, customer *model.Customer) error {
	args := m.Called(tx, customer)
	return args.Error(0)
}
func (m *mockCustomerRepo) GetCustomerByID(id int) (*model.Customer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}
func (m *mockCustomerRepo) GetCustomersByUserID(userID int) ([]*model.Customer, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Customer), args.Error(1)
}
func (m *mockCustomerRepo) UpdateCustomer(customer *model.Customer) error {
	args := m.Called(customer)
	return args.Error(0)
}
func (m *mockCustomerRepo) DeleteCustomer(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestLeadService_CreateLead(t *testing.T) {
	mockRepo := new(mockLeadRepo)
	leadService := NewLeadService(nil, mockRepo, new(mockCustomerRepo), nil)

	mockRepo.On("CreateLead", mock.MatchedBy(func(l *model.Lead) bool {
		return l.UserID == 1 && l.Name == "Acme" && l.Status == "new"
	})).Return(nil).Once()

	lead, err := leadService.CreateLead(1, model.LeadRequest{Name: "Acme"})

	assert.NoError(t, err)
	assert.Equal(t, "new", lead.Status, "status defaults to new")
	mockRepo.AssertExpectations(t)
}

func TestLeadService_GetLead_Ownership(t *testing.T) {
	mockRepo := new(mockLeadRepo)
	leadService := NewLeadService(nil, mockRepo, new(mockCustomerRepo), nil)

	t.Run("not found", func(t *testing.T) {
		mockRepo.On("GetLeadByID", 99).Return(nil, sql.ErrNoRows).Once()

		_, err := leadService.GetLead(1, 99)
		assert.Equal(t, ErrLeadNotFound, err)
	})

	t.Run("owned by someone else", func(t *testing.T) {
		mockRepo.On("GetLeadByID", 7).Return(&model.Lead{ID: 7, UserID: 2}, nil).Once()

		_, err := leadService.GetLead(1, 7)
		assert.Equal(t, ErrNotLeadOwner, err)
	})
}

func TestLeadService_ConvertLead(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	lead := &model.Lead{ID: 3, UserID: 1, Name: "Acme", Email: "acme@x.com", City: "Berlin"}

	t.Run("success", func(t *testing.T) {
		mockLeads := new(mockLeadRepo)
		mockCustomers := new(mockCustomerRepo)
		leadService := NewLeadService(db, mockLeads, mockCustomers, nil)

		dbMock.ExpectBegin()
		mockLeads.On("GetLeadByID", 3).Return(lead, nil).Once()
		mockCustomers.On("CreateCustomerTx", mock.Anything, mock.MatchedBy(func(c *model.Customer) bool {
			return c.UserID == 1 && c.Name == "Acme" && c.City == "Berlin"
		})).Return(nil).Once()
		mockLeads.On("DeleteLeadTx", mock.Anything, 3).Return(nil).Once()
		dbMock.ExpectCommit()

		customer, err := leadService.ConvertLead(context.Background(), 1, 3)

		assert.NoError(t, err)
		assert.Equal(t, "Acme", customer.Name)
		mockLeads.AssertExpectations(t)
		mockCustomers.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("customer insert failure rolls back", func(t *testing.T) {
		mockLeads := new(mockLeadRepo)
		mockCustomers := new(mockCustomerRepo)
		leadService := NewLeadService(db, mockLeads, mockCustomers, nil)

		dbMock.ExpectBegin()
		mockLeads.On("GetLeadByID", 3).Return(lead, nil).Once()
		mockCustomers.On("CreateCustomerTx", mock.Anything, mock.Anything).Return(assert.AnError).Once()
		dbMock.ExpectRollback()

		_, err := leadService.ConvertLead(context.Background(), 1, 3)

		assert.Error(t, err)
		mockLeads.AssertNotCalled(t, "DeleteLeadTx")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
