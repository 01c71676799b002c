package spectrum

import (
	"fmt"
	"sort"

	"github.com/pesolab/pespec/event"
)

// Meta is the free-form, self-describing metadata of one spectrum. Any key is
// accepted; name and filename are required at construction. Every write after
// construction emits a changed-metadata event carrying the key and new value.
type Meta struct {
	*event.Observable
	attrs map[string]any
}

// NewMeta creates the metadata bag. attrs must contain "name" and "filename".
func NewMeta(attrs map[string]any) (*Meta, error) {
	for _, required := range []string{"name", "filename"} {
		if _, ok := attrs[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, required)
		}
	}
	m := &Meta{attrs: make(map[string]any, len(attrs))}
	m.Observable = event.NewObservable(m, SignalChangedMetadata)
	for k, v := range attrs {
		m.attrs[k] = v
	}
	return m, nil
}

// Get returns the value stored under key, or nil when absent.
func (m *Meta) Get(key string) any {
	return m.attrs[key]
}

// Set stores value under key and emits changed-metadata.
func (m *Meta) Set(key string, value any) {
	m.attrs[key] = value
	m.Emit(event.Event{Signal: SignalChangedMetadata, Attr: key, Value: value})
}

// Keys returns all stored keys, sorted.
func (m *Meta) Keys() []string {
	keys := make([]string, 0, len(m.attrs))
	for k := range m.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Name returns the spectrum's display name.
func (m *Meta) Name() string {
	s, _ := m.attrs["name"].(string)
	return s
}

// Filename returns the source filename.
func (m *Meta) Filename() string {
	s, _ := m.attrs["filename"].(string)
	return s
}
