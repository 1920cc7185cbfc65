package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a membership or scholarship request keyed logically by
// (email, targetRef). At most one non-terminal application may exist per
// pair; see service.ApplicationService for the enforcement caveat.
type Application struct {
	ID          string            `json:"_id"`
	Rev         string            `json:"_rev,omitempty"`
	Type        string            `json:"_type"`
	Email       string            `json:"email"`
	Name        string            `json:"name,omitempty"`
	TargetRef   string            `json:"targetRef"`
	Message     string            `json:"message,omitempty"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
	DecidedAt   *time.Time        `json:"decidedAt,omitempty"`
}

const ApplicationDocType = "application"
