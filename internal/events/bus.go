// Package events defines the domain events exchanged between modules.
package events

import (
	"dealership_crm_backend/platform/events"
)

// Re-exported so modules depend on one events package.
type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Bus         = events.Bus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)
