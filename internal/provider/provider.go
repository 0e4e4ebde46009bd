package provider

import "context"

// Role tags a transcript turn when it is handed to a backend.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry of the conversation context sent to a backend.
type Turn struct {
	Role Role
	Text string
}

// Provider is one backend capability able to produce a response given the
// conversation so far and the new user text.
type Provider interface {
	// Identify returns the identifier shown in the response footer.
	Identify() string

	// Generate issues a single request. The history excludes the new user
	// turn; newText is sent as the current turn.
	Generate(ctx context.Context, history []Turn, newText string) (string, error)
}

// AvailabilityChecker is implemented by on-device providers whose runtime may
// simply not be present. The chain probes it before attempting generation.
type AvailabilityChecker interface {
	Available(ctx context.Context) error
}
