package models

// FailureReason classifies why an enrichment could not be produced.
type FailureReason string

const (
	ReasonNotConfigured FailureReason = "not_configured"
	ReasonUpstream      FailureReason = "upstream_error"
	ReasonEmpty         FailureReason = "empty"
)

// Enrichment is the outcome of an optional collaborator call. Callers decide
// whether a failure is fatal; Enrichment itself never is.
type Enrichment[T any] struct {
	Value  T
	Reason FailureReason
	Err    error
}

func Enriched[T any](v T) Enrichment[T] { return Enrichment[T]{Value: v} }

func EnrichmentFailed[T any](reason FailureReason, err error) Enrichment[T] {
	return Enrichment[T]{Reason: reason, Err: err}
}

func (e Enrichment[T]) OK() bool { return e.Reason == "" && e.Err == nil }

// Notice is a one-line description of the failure for the user, or "".
func (e Enrichment[T]) Notice(what string) string {
	if e.OK() {
		return ""
	}
	switch e.Reason {
	case ReasonNotConfigured:
		return what + " is enabled but not configured"
	case ReasonEmpty:
		return what + " returned nothing"
	}
	if e.Err != nil {
		return what + " failed: " + e.Err.Error()
	}
	return what + " failed"
}
