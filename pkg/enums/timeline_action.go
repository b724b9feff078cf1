package enums

// TimelineAction labels the event recorded by an order timeline entry.
type TimelineAction string

const (
	TimelineActionOrderCreated      TimelineAction = "order_created"
	TimelineActionStatusChanged     TimelineAction = "status_changed"
	TimelineActionAgentAssigned     TimelineAction = "agent_assigned"
	TimelineActionAgentUnassigned   TimelineAction = "agent_unassigned"
	TimelineActionDeliveryCompleted TimelineAction = "delivery_completed"
)

// String implements fmt.Stringer.
func (t TimelineAction) String() string {
	return string(t)
}
