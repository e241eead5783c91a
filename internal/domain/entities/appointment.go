package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// AppointmentType distinguishes a first session from a return session,
// which may carry a different price
type AppointmentType string

const (
	AppointmentTypeFirst  AppointmentType = "FIRST"
	AppointmentTypeReturn AppointmentType = "RETURN"
)

// PaymentStatus tracks how (and whether) an appointment has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid       PaymentStatus = "UNPAID"
	PaymentStatusPaidInPerson PaymentStatus = "PAID_IN_PERSON"
	PaymentStatusPaidOnline   PaymentStatus = "PAID_ONLINE"
)

// transitions is the single source of truth for the appointment state
// machine. Terminal states map to an empty list.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
	AppointmentStatusNoShow:    {},
}

// AllowedTransitions returns the statuses reachable from s
func (s AppointmentStatus) AllowedTransitions() []AppointmentStatus {
	return transitions[s]
}

// CanTransitionTo reports whether target is a legal next state for s
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s admits no further transitions
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether s is a known status value
func (s AppointmentStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// Appointment represents a scheduled session on the practitioner's calendar
type Appointment struct {
	ID                 string            `json:"id" db:"id"`
	UserID             string            `json:"user_id" db:"user_id"`
	ServiceID          string            `json:"service_id" db:"service_id"`
	PackageID          *string           `json:"package_id,omitempty" db:"package_id"`
	ScheduledAt        time.Time         `json:"scheduled_at" db:"scheduled_at"`
	EndAt              time.Time         `json:"end_at" db:"end_at"`
	Status             AppointmentStatus `json:"status" db:"status"`
	Type               AppointmentType   `json:"type" db:"type"`
	Location           string            `json:"location" db:"location"`
	Address            string            `json:"address,omitempty" db:"address"`
	Price              float64           `json:"price" db:"price"`
	TravelFee          float64           `json:"travel_fee" db:"travel_fee"`
	Notes              string            `json:"notes,omitempty" db:"notes"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason string            `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	PaymentStatus      PaymentStatus     `json:"payment_status" db:"payment_status"`
	PaymentMethod      string            `json:"payment_method,omitempty" db:"payment_method"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the appointment occupies its interval on the
// calendar. Only PENDING and CONFIRMED appointments block other bookings.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// TotalDue returns the amount owed for the session including travel fee
func (a *Appointment) TotalDue() float64 {
	return a.Price + a.TravelFee
}
