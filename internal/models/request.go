package models

import "time"

// RequestStatus tracks the lifecycle of a resource request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
	RequestStatusRejected  RequestStatus = "REJECTED"
)

// ResourceRequest captures a student asking for material nobody has
// uploaded yet.
type ResourceRequest struct {
	ID             string        `db:"id" json:"id"`
	Title          string        `db:"title" json:"title"`
	Subject        string        `db:"subject" json:"subject"`
	Branch         string        `db:"branch" json:"branch"`
	Semester       string        `db:"semester" json:"semester"`
	Description    string        `db:"description" json:"description,omitempty"`
	College        string        `db:"college" json:"college"`
	Status         RequestStatus `db:"status" json:"status"`
	RequestedBy    string        `db:"requested_by" json:"requested_by"`
	RequesterEmail string        `db:"requester_email" json:"requester_email"`
	ResolvedBy     *string       `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	College  string
	Status   RequestStatus
	Branch   string
	Page     int
	PageSize int
}
