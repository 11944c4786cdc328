package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RenderID  ID
	DatasetID ID
)

func (id RenderID) String() string  { return ID(id).String() }
func (id DatasetID) String() string { return ID(id).String() }

// NewRenderID tags one render pass.
func NewRenderID() RenderID {
	return RenderID(NewID())
}

// ParseDatasetID parses a logical dataset identifier such as "ocarbon".
func ParseDatasetID(s string) (DatasetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	if strings.ContainsAny(s, " /\\") {
		return "", fmt.Errorf("dataset ID %q contains invalid characters", s)
	}
	return DatasetID(s), nil
}
