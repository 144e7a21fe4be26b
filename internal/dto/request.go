package dto

import "github.com/campus-vault/campusvault-api/internal/models"

// CreateResourceRequest asks for material that has not been uploaded yet.
type CreateResourceRequest struct {
	Title       string `json:"title" validate:"required,min=2"`
	Subject     string `json:"subject" validate:"required"`
	Branch      string `json:"branch" validate:"required"`
	Semester    string `json:"semester" validate:"required"`
	Description string `json:"description"`
}

// UpdateRequestStatusRequest moves a request to a terminal status.
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=FULFILLED REJECTED"`
}

// RequestFilter captures request listing query parameters.
type RequestFilter struct {
	Status   models.RequestStatus
	Branch   string
	Page     int
	PageSize int
}
