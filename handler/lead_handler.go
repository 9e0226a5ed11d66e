package handler

import (
	"encoding/json"
	"lead-crm-api/common"
	"lead-crm-api/logger"
	"lead-crm-api/model"
	"lead-crm-api/service"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type LeadHandler struct {
	service *service.LeadService
}

func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{service: leadService}
}

func leadError(err error) *common.AppError {
	switch err {
	case service.ErrLeadNotFound:
		return common.NewAppError(http.StatusNotFound, "Lead not found", nil)
	case service.ErrNotLeadOwner:
		return common.NewAppError(http.StatusForbidden, "You can only access your own leads", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not process lead request", err)
	}
}

func pathID(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid id in path", nil)
	}
	return id, nil
}

// CreateLead godoc
// @Summary      Create a new lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.LeadRequest true "lead payload"
// @Success      201 {object} model.Lead
// @Router       /api/leads [post]
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LeadRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"name":    req.Name,
	})
	log.Info("Create lead request received")

	lead, err := h.service.CreateLead(userID, req)
	if err != nil {
		return leadError(err)
	}

	writeJSON(w, http.StatusCreated, lead)
	return nil
}

// ListLeads lists the authenticated user's leads.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	leads, err := h.service.ListLeadsForUser(userID)
	if err != nil {
		return leadError(err)
	}
	if leads == nil {
		leads = []*model.Lead{}
	}

	writeJSON(w, http.StatusOK, leads)
	return nil
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	leadID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	lead, err := h.service.GetLead(userID, leadID)
	if err != nil {
		return leadError(err)
	}

	writeJSON(w, http.StatusOK, lead)
	return nil
}

func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LeadRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	leadID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	lead, err := h.service.UpdateLead(userID, leadID, req)
	if err != nil {
		return leadError(err)
	}

	writeJSON(w, http.StatusOK, lead)
	return nil
}

func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	leadID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteLead(userID, leadID); err != nil {
		return leadError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ConvertLead turns a lead into a customer record.
func (h *LeadHandler) ConvertLead(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	leadID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	customer, err := h.service.ConvertLead(r.Context(), userID, leadID)
	if err != nil {
		return leadError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(customer)
	return nil
}
