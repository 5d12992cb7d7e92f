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
		// Fallback to v4 if v7 fails
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
	RunID       ID
	SceneID     ID
	ProductName ID
	TractID     ID
)

// String conversions for domain IDs
func (id RunID) String() string       { return ID(id).String() }
func (id SceneID) String() string     { return ID(id).String() }
func (id ProductName) String() string { return ID(id).String() }
func (id TractID) String() string     { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseProductName parses a string into ProductName. Product names are the stable
// external identifiers the exploration front-end retrieves rasters by.
func ParseProductName(s string) (ProductName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("product name cannot be empty")
	}
	return ProductName(s), nil
}
