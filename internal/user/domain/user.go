package domain

import (
	"errors"
	"time"
)

// User is the core farmer identity record.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Location   string    `json:"location"` // free text, e.g. "Pune, Maharashtra, India"
	State      string    `json:"state"`
	JoinedDate time.Time `json:"joinedDate"`
}

// Validate validates the user for persistence. At least one of phone/email must
// be set; phone is the preferred unique key when present.
func (u *User) Validate() error {
	if u.Phone == "" && u.Email == "" {
		return errors.New("phone or email is required")
	}
	return nil
}
