package validation

// Failure reasons surfaced in Outcome.Reason. The combined failover
// reason deliberately discards the per-provider detail; the orchestrator
// logs the originals before collapsing them.
const (
	ReasonInvalidInput       = "invalid input"
	ReasonMissingCredentials = "missing credentials"
	ReasonNoMatch            = "no match"
	ReasonBothFailed         = "neither provider could validate the address"
)
