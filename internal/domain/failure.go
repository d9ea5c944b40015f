package domain

// FailureKind labels where in a check something went wrong. It is logged as
// error_kind and used as a metrics label.
type FailureKind string

const (
	NetworkFailure      FailureKind = "NetworkFailure"
	ParseFailure        FailureKind = "ParseFailure"
	HealthCheckFailure  FailureKind = "HealthCheckFailure"
	PersistenceFailure  FailureKind = "PersistenceFailure"
	NotificationFailure FailureKind = "NotificationFailure"
)
