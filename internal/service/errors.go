package service

import "errors"

// Validation errors surfaced to the API layer as 400s.
var (
	ErrCustomerNameRequired = errors.New("service: customer name is required")
	ErrStationRequired      = errors.New("service: station id is required")
	ErrStationInactive      = errors.New("service: station is not active")
	ErrInvalidRate          = errors.New("service: hourly rate must be positive")
	ErrInvalidTargetAmount  = errors.New("service: target amount must be positive")
	ErrInvalidTargetType    = errors.New("service: unknown target type")
)
