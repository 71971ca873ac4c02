package adminrequest

import (
	"time"

	adminRequestDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/adminrequest"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	Statuses  = []string{StatusPending, StatusApproved, StatusRejected}
	Decisions = []string{StatusApproved, StatusRejected}
)

type AdminRequest struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Reason       *string    `json:"reason"`
	Status       string     `json:"status"`
	RequestedAt  time.Time  `json:"requested_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	ReviewedBy   *int64     `json:"reviewed_by"`
	ReviewerName *string    `json:"reviewer_name,omitempty"`
}

func (r *AdminRequest) IsPending() bool {
	return r.Status == StatusPending
}

func FromDataModel(r *adminRequestDatamodel.AdminRequest) *AdminRequest {
	return &AdminRequest{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Reason:       r.Reason,
		Status:       r.Status,
		RequestedAt:  r.RequestedAt,
		ReviewedAt:   r.ReviewedAt,
		ReviewedBy:   r.ReviewedBy,
		ReviewerName: r.ReviewerName,
	}
}
