package repository

import (
	"database/sql"
	"lead-crm-api/logger"
	"lead-crm-api/model"
)

// ICustomerRepository defines the contract for customer persistence.
// CreateCustomerTx participates in the lead-conversion transaction.
type ICustomerRepository interface {
	CreateCustomerTx(tx *sql.Tx, customer *model.Customer) error
	GetCustomerByID(id int) (*model.Customer, error)
	GetCustomersByUserID(userID int) ([]*model.Customer, error)
	UpdateCustomer(customer *model.Customer) error
	DeleteCustomer(id int) error
}

type CustomerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, user_id, name, email, phone, company, address, city, notes, created_at, updated_at`

func (r *CustomerRepository) CreateCustomerTx(tx *sql.Tx, customer *model.Customer) error {
	query := `INSERT INTO customers (user_id, name, email, phone, company, address, city, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
	err := tx.QueryRow(query, customer.UserID, customer.Name, customer.Email, customer.Phone,
		customer.Company, customer.Address, customer.City, customer.Notes).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute create customer query")
		return err
	}
	return nil
}

func (r *CustomerRepository) GetCustomerByID(id int) (*model.Customer, error) {
	customer := &model.Customer{}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&customer.ID, &customer.UserID, &customer.Name,
		&customer.Email, &customer.Phone, &customer.Company, &customer.Address, &customer.City,
		&customer.Notes, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *CustomerRepository) GetCustomersByUserID(userID int) ([]*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for customers by user ID")
		return nil, err
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company,
			&c.Address, &c.City, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan customer row")
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) UpdateCustomer(customer *model.Customer) error {
	query := `UPDATE customers SET name = $1, email = $2, phone = $3, company = $4, address = $5,
		city = $6, notes = $7, updated_at = now() WHERE id = $8 RETURNING updated_at`
	return r.DB.QueryRow(query, customer.Name, customer.Email, customer.Phone, customer.Company,
		customer.Address, customer.City, customer.Notes, customer.ID).Scan(&customer.UpdatedAt)
}

func (r *CustomerRepository) DeleteCustomer(id int) error {
	query := `DELETE FROM customers WHERE id = $1`
	_, err := r.DB.Exec(query, id)
	return err
}
