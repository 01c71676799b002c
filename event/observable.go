package event

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// HandlerID identifies one subscription. IDs are unique across all signals of
// all observables, so Disconnect never needs the signal name.
type HandlerID = uuid.UUID

type handler struct {
	id HandlerID
	cb Callback
}

// Observable holds per-signal subscription registries for one entity.
// It is embedded by every observable pespec type. Observable is not safe for
// concurrent use; the domain model is single-threaded by design.
type Observable struct {
	owner       any
	signals     []Signal
	observers   map[Signal][]handler
	propagators map[HandlerID]*Observable
}

// NewObservable creates the registry for owner with its declared signals.
// Emissions default their Source to owner.
func NewObservable(owner any, signals ...Signal) *Observable {
	o := &Observable{
		owner:       owner,
		signals:     slices.Clone(signals),
		observers:   make(map[Signal][]handler, len(signals)),
		propagators: make(map[HandlerID]*Observable),
	}
	for _, s := range signals {
		o.observers[s] = nil
	}
	return o
}

// Signals returns the declared signal names.
func (o *Observable) Signals() []Signal {
	return slices.Clone(o.signals)
}

// Connect registers cb for the given signal and returns the subscription id.
// Connecting to an undeclared signal fails with ErrUnknownSignal.
func (o *Observable) Connect(signal Signal, cb Callback) (HandlerID, error) {
	if _, ok := o.observers[signal]; !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownSignal, signal)
	}
	id := uuid.New()
	o.observers[signal] = append(o.observers[signal], handler{id: id, cb: cb})
	return id, nil
}

// Disconnect removes the subscription with the given id from every signal.
// Unknown ids are ignored.
func (o *Observable) Disconnect(id HandlerID) {
	for signal, hs := range o.observers {
		o.observers[signal] = slices.DeleteFunc(hs, func(h handler) bool {
			return h.id == id
		})
	}
}

// DisconnectAll removes every subscription from every signal.
func (o *Observable) DisconnectAll() {
	for signal := range o.observers {
		o.observers[signal] = nil
	}
}

// Emit delivers ev to every callback registered for ev.Signal, synchronously
// and in registration order. A nil Source is filled with the owner. Callbacks
// registered or removed during delivery take effect on the next emission.
// Emitting an undeclared signal delivers to nobody.
func (o *Observable) Emit(ev Event) {
	if ev.Source == nil {
		ev.Source = o.owner
	}
	hs := slices.Clone(o.observers[ev.Signal])
	for _, h := range hs {
		h.cb(ev)
	}
}

// Propagate subscribes o to one of child's signals and forwards every received
// event to o's own subscribers with ReEmitted set. The original Source is kept
// so consumers can tell which entity actually changed. The returned id removes
// exactly this link via StopPropagating.
func (o *Observable) Propagate(child *Observable, signal Signal) (HandlerID, error) {
	id, err := child.Connect(signal, func(ev Event) {
		ev.ReEmitted = true
		o.Emit(ev)
	})
	if err != nil {
		return uuid.Nil, err
	}
	o.propagators[id] = child
	return id, nil
}

// StopPropagating removes the propagation link with the given id.
// Unknown ids are ignored.
func (o *Observable) StopPropagating(id HandlerID) {
	child, ok := o.propagators[id]
	if !ok {
		return
	}
	delete(o.propagators, id)
	child.Disconnect(id)
}

// StopPropagatingAll removes every propagation link to the given child.
func (o *Observable) StopPropagatingAll(child *Observable) {
	var ids []HandlerID
	for id, c := range o.propagators {
		if c == child {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		o.StopPropagating(id)
	}
}
