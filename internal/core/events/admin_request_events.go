package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAdminRequestSubmitted = "admin_request.submitted"
	EventTypeAdminRequestReviewed  = "admin_request.reviewed"
)

type AdminRequestSubmittedEvent struct {
	BaseEvent
	RequestID   int64     `json:"request_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Reason      *string   `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewAdminRequestSubmittedEvent(requestID int64, email, name string, reason *string, requestedAt time.Time) *AdminRequestSubmittedEvent {
	return &AdminRequestSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAdminRequestSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"email":      email,
			},
		},
		RequestID:   requestID,
		Email:       email,
		Name:        name,
		Reason:      reason,
		RequestedAt: requestedAt,
	}
}

type AdminRequestReviewedEvent struct {
	BaseEvent
	RequestID    int64     `json:"request_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	ReviewerName string    `json:"reviewer_name"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

func NewAdminRequestReviewedEvent(requestID int64, email, name, status, reviewerName string, reviewedAt time.Time) *AdminRequestReviewedEvent {
	return &AdminRequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAdminRequestReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"status":     status,
			},
		},
		RequestID:    requestID,
		Email:        email,
		Name:         name,
		Status:       status,
		ReviewerName: reviewerName,
		ReviewedAt:   reviewedAt,
	}
}
