package repository

import (
	"database/sql"
	"lead-crm-api/logger"
	"lead-crm-api/model"
)

// ILeadRepository defines the contract for lead persistence. DeleteLeadTx
// participates in the conversion transaction owned by the service layer.
type ILeadRepository interface {
	CreateLead(lead *model.Lead) error
	GetLeadByID(id int) (*model.Lead, error)
	GetLeadsByUserID(userID int) ([]*model.Lead, error)
	UpdateLead(lead *model.Lead) error
	DeleteLead(id int) error
	DeleteLeadTx(tx *sql.Tx, id int) error
}

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, user_id, name, email, phone, company, address, city, status, notes, created_at, updated_at`

func (r *LeadRepository) CreateLead(lead *model.Lead) error {
	log := logger.Log.WithField("user_id", lead.UserID)
	log.Info("Executing query to create a new lead")

	query := `INSERT INTO leads (user_id, name, email, phone, company, address, city, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query, lead.UserID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Address, lead.City, lead.Status, lead.Notes).
		Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create lead query")
		return err
	}
	return nil
}

func (r *LeadRepository) GetLeadByID(id int) (*model.Lead, error) {
	lead := &model.Lead{}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&lead.ID, &lead.UserID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.Company, &lead.Address, &lead.City, &lead.Status, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) GetLeadsByUserID(userID int) ([]*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for leads by user ID")
		return nil, err
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.Company,
			&l.Address, &l.City, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan lead row")
			return nil, err
		}
		leads = append(leads, &l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) UpdateLead(lead *model.Lead) error {
	query := `UPDATE leads SET name = $1, email = $2, phone = $3, company = $4, address = $5,
		city = $6, status = $7, notes = $8, updated_at = now() WHERE id = $9 RETURNING updated_at`
	return r.DB.QueryRow(query, lead.Name, lead.Email, lead.Phone, lead.Company, lead.Address,
		lead.City, lead.Status, lead.Notes, lead.ID).Scan(&lead.UpdatedAt)
}

func (r *LeadRepository) DeleteLead(id int) error {
	query := `DELETE FROM leads WHERE id = $1`
	_, err := r.DB.Exec(query, id)
	return err
}

func (r *LeadRepository) DeleteLeadTx(tx *sql.Tx, id int) error {
	query := `DELETE FROM leads WHERE id = $1`
	_, err := tx.Exec(query, id)
	return err
}
