package enums

import "fmt"

// AgentCapacity tracks whether an agent can take another own-delivery order.
type AgentCapacity string

const (
	AgentCapacityAvailable AgentCapacity = "available"
	AgentCapacityBusy      AgentCapacity = "busy"
)

var validAgentCapacities = []AgentCapacity{
	AgentCapacityAvailable,
	AgentCapacityBusy,
}

// String implements fmt.Stringer.
func (a AgentCapacity) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AgentCapacity.
func (a AgentCapacity) IsValid() bool {
	for _, candidate := range validAgentCapacities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgentCapacity converts raw input into an AgentCapacity.
func ParseAgentCapacity(value string) (AgentCapacity, error) {
	for _, candidate := range validAgentCapacities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid agent capacity %q", value)
}
