package handler

import (
	"lead-crm-api/common"
	"lead-crm-api/model"
	"lead-crm-api/service"
	"net/http"
)

type CustomerHandler struct {
	service *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: customerService}
}

func customerError(err error) *common.AppError {
	switch err {
	case service.ErrCustomerNotFound:
		return common.NewAppError(http.StatusNotFound, "Customer not found", nil)
	case service.ErrNotCustomerOwner:
		return common.NewAppError(http.StatusForbidden, "You can only access your own customers", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not process customer request", err)
	}
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}

	customers, err := h.service.ListCustomersForUser(userID)
	if err != nil {
		return customerError(err)
	}
	if customers == nil {
		customers = []*model.Customer{}
	}

	writeJSON(w, http.StatusOK, customers)
	return nil
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	customerID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	customer, err := h.service.GetCustomer(userID, customerID)
	if err != nil {
		return customerError(err)
	}

	writeJSON(w, http.StatusOK, customer)
	return nil
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CustomerRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	customerID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	customer, err := h.service.UpdateCustomer(userID, customerID, req)
	if err != nil {
		return customerError(err)
	}

	writeJSON(w, http.StatusOK, customer)
	return nil
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.ErrAccessTokenRequired()
	}
	customerID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteCustomer(userID, customerID); err != nil {
		return customerError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
