// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"agencyhub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Upload Domain Events
// =============================================================================

// ReportUploadCompleted is published when a batch upload finishes. It is the
// invalidation signal for read-side views: household, contact, and stage
// data derived from this report type must be refreshed.
type ReportUploadCompleted struct {
	BaseEvent
	UploadID   uuid.UUID `json:"uploadId"`
	AgencyID   uuid.UUID `json:"agencyId"`
	ReportType string    `json:"reportType"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
}

func (e ReportUploadCompleted) EventName() string { return "uploads.report.completed" }

// HouseholdContactLinked is published when a household gains its canonical
// contact link.
type HouseholdContactLinked struct {
	BaseEvent
	AgencyID    uuid.UUID `json:"agencyId"`
	HouseholdID uuid.UUID `json:"householdId"`
	ContactID   uuid.UUID `json:"contactId"`
}

func (e HouseholdContactLinked) EventName() string { return "households.contact.linked" }
