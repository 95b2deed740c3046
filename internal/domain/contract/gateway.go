package contract

// MessageContent carries the text for one send.
type MessageContent struct {
	Text string
}

// DeliveryGateway is the outbound messaging surface. Delivery is at-least-once
// and fire-and-forget per recipient; callers must tolerate repeats.
type DeliveryGateway interface {
	// SendToChannel posts to the team's shared channel and returns a message ref
	SendToChannel(channelRef string, content MessageContent) (string, error)

	// SendDirect sends a DM to one member and returns a message ref
	SendDirect(memberRef string, content MessageContent) (string, error)

	// ValidateChannelAccess reports whether the bot can post to the channel
	ValidateChannelAccess(channelRef string) error

	// LookupDisplayName resolves a member's display name on the platform
	LookupDisplayName(memberRef string) (string, error)
}

// AuditLogger accepts structured events. Implementations must never let a
// logging failure propagate into the operation being described.
type AuditLogger interface {
	Record(action, actor, orgID string, tags ...string)
}
