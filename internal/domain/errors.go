package domain

import "fmt"

// FetchError reports a whole-source fetch failure. It is non-fatal to
// the ingestion cycle: other sources proceed independently.
type FetchError struct {
	SourceID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch source %s: %v", e.SourceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a single unparseable feed item. The item is
// dropped and the cycle continues.
type ParseError struct {
	SourceID string
	GUID     string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse item %s from %s: field %s: %v", e.GUID, e.SourceID, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ClusterConflictError signals an inconsistent merge attempt. The
// engine logs it and keeps the clusters separate rather than crash.
type ClusterConflictError struct {
	ClusterA string
	ClusterB string
}

func (e *ClusterConflictError) Error() string {
	return fmt.Sprintf("cluster conflict between %s and %s", e.ClusterA, e.ClusterB)
}

// NotFoundError reports a failed id lookup.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationError rejects malformed admin or moderation input before
// it reaches core state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
