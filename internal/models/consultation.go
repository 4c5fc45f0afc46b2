package models

import "time"

type ConsultationStatus string

const (
	ConsultationStatusPending    ConsultationStatus = "pending"
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
	ConsultationStatusCancelled  ConsultationStatus = "cancelled"
)

// Consultation is a booking request from the public form. UserID is nil for
// guest submissions. Rows are status-mutated and annotated by staff but never
// deleted by this service.
type Consultation struct {
	ID            string             `mapstructure:"id"`
	UserID        *string            `mapstructure:"user_id"`
	Name          string             `mapstructure:"name"`
	Email         string             `mapstructure:"email"`
	Phone         string             `mapstructure:"phone"`
	Service       string             `mapstructure:"service"`
	Message       string             `mapstructure:"message"`
	PreferredDate time.Time          `mapstructure:"preferred_date"`
	Status        ConsultationStatus `mapstructure:"status"`
	AssignedTo    *string            `mapstructure:"assigned_to"`
	Notes         string             `mapstructure:"notes"`
	CreatedAt     time.Time          `mapstructure:"created_at"`
	UpdatedAt     time.Time          `mapstructure:"updated_at"`
	CompletedAt   *time.Time         `mapstructure:"completed_at"`
	CancelledAt   *time.Time         `mapstructure:"cancelled_at"`
}

// Requester is the joined profile detail shown alongside a consultation in the
// admin console.
type Requester struct {
	FullName string
	Email    string
}

// ConsultationWithRequester carries the joined requester details the admin
// list view needs. Requester is nil for guest submissions or when the profile
// lookup degraded.
type ConsultationWithRequester struct {
	Consultation
	Requester *Requester
}
