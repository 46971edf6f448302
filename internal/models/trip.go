package models

import "time"

// Trip represents a group trip whose members share expenses and a common
// fund pool.
type Trip struct {
	ID        int64
	Name      string
	ShareCode string
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
