package domain

import "time"

// Payment is the charge summary recorded on an appointment once the
// client-side payment flow succeeds.
type Payment struct {
	Amount      float64 `json:"amount" bson:"amount"`
	Created     int64   `json:"created" bson:"created"`
	Last4       string  `json:"last4" bson:"last4"`
	Transaction string  `json:"transaction" bson:"transaction"`
}

// Appointment is a booked visit. Date is stored in M/D/YYYY form so
// lookups by (email, date) match what the booking form sends.
type Appointment struct {
	ID          string    `json:"_id"`
	PatientName string    `json:"patientName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ServiceName string    `json:"serviceName"`
	Time        string    `json:"time"`
	Date        string    `json:"date"`
	Price       float64   `json:"price"`
	Payment     *Payment  `json:"payment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
