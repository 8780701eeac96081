package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Static always returns the same value. Used where requests must be reproducible.
type Static string

func (s Static) New() string {
	return string(s)
}
