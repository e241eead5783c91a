package entities

import "time"

// Service represents a bookable session type offered by the practitioner
type Service struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	// Duration is the session length in minutes and determines the interval
	// an appointment occupies on the calendar
	Duration    int      `json:"duration" db:"duration"`
	Price       float64  `json:"price" db:"price"`
	PriceReturn *float64 `json:"price_return,omitempty" db:"price_return"`
	Active      bool     `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PriceFor returns the price charged for an appointment of the given type
func (s *Service) PriceFor(t AppointmentType) float64 {
	if t == AppointmentTypeReturn && s.PriceReturn != nil {
		return *s.PriceReturn
	}
	return s.Price
}
