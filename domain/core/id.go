package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier.
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails.
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types.
type (
	// RunID tags one invocation of the OC simulator (one config.json execution).
	RunID ID
	// ReplicationID tags a single Monte-Carlo replication within a driver run, for log correlation.
	ReplicationID ID
	// RuleID is the caller-supplied `id` field on a rule design (see jsonconfig.Rule).
	RuleID string
)

func (id RunID) String() string         { return ID(id).String() }
func (id ReplicationID) String() string { return ID(id).String() }
func (id RuleID) String() string        { return string(id) }

// ParseRunID parses a string into RunID.
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseRuleID parses a string into RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("rule ID cannot be empty")
	}
	return RuleID(s), nil
}
