package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"playhub/internal/models"
	"playhub/internal/storage"
)

// NewListCustomersHandler returns GET /api/customers handler.
func NewListCustomersHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := store.ListCustomers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch customers")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
	}
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// NewCreateCustomerHandler returns POST /api/customers handler.
func NewCreateCustomerHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		customer := &models.Customer{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		}
		if err := store.CreateCustomer(r.Context(), customer); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create customer")
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	}
}

// NewCustomerByPhoneHandler returns GET /api/customers/phone/{phone} handler.
func NewCustomerByPhoneHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := store.GetCustomerByPhone(r.Context(), r.PathValue("phone"))
		if errors.Is(err, storage.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch customer")
			return
		}
		writeJSON(w, http.StatusOK, customer)
	}
}
