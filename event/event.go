// Package event provides the synchronous notification substrate shared by all
// pespec entities. Each observable instance declares a fixed set of named
// signals; consumers register callbacks per signal and receive typed Event
// records. Delivery is in-line and depth-first: a callback may mutate state and
// trigger nested emissions before the outer Emit returns.
package event

// Signal names one kind of change an observable can announce.
type Signal string

// Event is the record delivered to every callback registered for a signal.
// Fields that an emitter does not set read as their zero values.
type Event struct {
	// Source is the instance the event originated from. Propagated events
	// keep the source of the child that first emitted them.
	Source any

	// Signal is the name the event was emitted under.
	Signal Signal

	// Attr names the attribute that changed, when a single attribute did.
	Attr string

	// Value carries the new value for attribute-level changes.
	Value any

	// ReEmitted marks events forwarded through a propagation link.
	ReEmitted bool
}

// Callback receives emitted events. Extra state is bound by closing over it.
type Callback func(Event)
