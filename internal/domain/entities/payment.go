package entities

import "time"

// PaymentRecordStatus represents the state of a recorded payment
type PaymentRecordStatus string

const (
	PaymentRecordStatusConfirmed PaymentRecordStatus = "CONFIRMED"
)

// Payment is the money record created when an appointment is completed with
// a confirmed payment, or recorded manually afterwards
type Payment struct {
	ID            string              `json:"id" db:"id"`
	AppointmentID string              `json:"appointment_id" db:"appointment_id"`
	Amount        float64             `json:"amount" db:"amount"`
	Method        string              `json:"method" db:"method"`
	Status        PaymentRecordStatus `json:"status" db:"status"`
	PaidAt        time.Time           `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
}
