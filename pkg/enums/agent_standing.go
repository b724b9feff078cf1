package enums

import "fmt"

// AgentStanding tracks the account standing of a delivery agent. It is kept
// separate from AgentCapacity: standing is an administrative state, capacity
// is a scheduling state.
type AgentStanding string

const (
	AgentStandingPending   AgentStanding = "pending"
	AgentStandingActive    AgentStanding = "active"
	AgentStandingSuspended AgentStanding = "suspended"
	AgentStandingInactive  AgentStanding = "inactive"
)

var validAgentStandings = []AgentStanding{
	AgentStandingPending,
	AgentStandingActive,
	AgentStandingSuspended,
	AgentStandingInactive,
}

// String implements fmt.Stringer.
func (a AgentStanding) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AgentStanding.
func (a AgentStanding) IsValid() bool {
	for _, candidate := range validAgentStandings {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgentStanding converts raw input into an AgentStanding.
func ParseAgentStanding(value string) (AgentStanding, error) {
	for _, candidate := range validAgentStandings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid agent standing %q", value)
}
