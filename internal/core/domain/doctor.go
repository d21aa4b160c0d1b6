package domain

import "time"

// Doctor is a listed practitioner. Image holds the raw uploaded bytes.
type Doctor struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     []byte    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}
