package idgen

import (
	"github.com/google/uuid"
)

// PrefixRequest marks HTTP request IDs
const PrefixRequest = "req_"

// NewRequest generates a new request ID with req_ prefix
func NewRequest() string {
	return PrefixRequest + uuid.New().String()
}

// New generates a generic UUID without prefix (for internal use only)
func New() string {
	return uuid.New().String()
}
