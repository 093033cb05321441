package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a person buying in the market together with the discount
// percentage applied to every new receipt line.
type Customer struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Surname       string    `json:"surname" db:"surname"`
	BirthDate     time.Time `json:"birth_date" db:"birth_date"`
	DiscountValue int       `json:"discount_value" db:"discount_value"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FullName returns "Name Surname".
func (c *Customer) FullName() string {
	return c.Name + " " + c.Surname
}
