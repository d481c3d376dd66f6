package entities

import "time"

// CaptainStatus is the availability of a captain
type CaptainStatus string

const (
	CaptainStatusActive   CaptainStatus = "active"
	CaptainStatusInactive CaptainStatus = "inactive"
)

// Captain represents a driver in the ride-hailing store
type Captain struct {
	ID        string        `json:"id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Email     string        `json:"email"`
	Status    CaptainStatus `json:"status"`
	Vehicle   Vehicle       `json:"vehicle"`

	// Location is nil until the captain first reports a position.
	Location  *Location `json:"location,omitempty"`
	SocketID  string    `json:"socket_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle describes the captain's vehicle
type Vehicle struct {
	Color    string `json:"color"`
	Plate    string `json:"plate"`
	Capacity int    `json:"capacity"`
	Type     string `json:"vehicle_type"`
}

// Location represents a geographic location
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}
