package models

import "time"

// Cast represents a performer on the store roster.
type Cast struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Active    bool       `db:"is_active" json:"is_active"`
	HiredAt   *time.Time `db:"hired_at" json:"hired_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
