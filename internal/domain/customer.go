package domain

import "time"

// Customer groups loans under an opaque, caller-supplied identifier.
type Customer struct {
	CreatedAt time.Time
	ID        string
	Name      string
}
