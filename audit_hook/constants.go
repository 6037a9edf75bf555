package audithook

// Action constants for audit events.
const (
	ActionEngineStarted   = "engine.started"
	ActionEngineStopped   = "engine.stopped"
	ActionTempoMapCreated = "tempo_map.created"
	ActionTempoMapUpdated = "tempo_map.updated"
	ActionTempoMapDeleted = "tempo_map.deleted"

	// Only recorded when WithEnabledActions names it.
	ActionTempoMapResolved = "tempo_map.resolved"
)

// Resource constants for audit events.
const (
	ResourceEngine   = "engine"
	ResourceTempoMap = "tempo_map"
)

// Category constants for audit events.
const (
	CategoryLifecycle = "lifecycle"
	CategoryCatalogue = "catalogue"
	CategoryAccess    = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
