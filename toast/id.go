package toast

import "github.com/google/uuid"

// IDGenerator returns a fresh instance identifier on every call.
type IDGenerator func() string

// NewInstanceID is the default IDGenerator.
func NewInstanceID() string {
	return uuid.NewString()
}
