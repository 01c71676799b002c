package fit

import (
	"fmt"
	"slices"
)

// Parameters is an insertion-ordered set of named parameters. It is the shared
// store coordinated by one spectrum model; peaks register into it and fits
// merge results back into it.
type Parameters struct {
	names []string
	table map[string]*Parameter
}

// NewParameters creates an empty parameter set.
func NewParameters() *Parameters {
	return &Parameters{table: make(map[string]*Parameter)}
}

// Add inserts a parameter with the given starting value, unbounded and
// varying, and returns it for further Set calls. Adding an existing name
// replaces the stored parameter.
func (ps *Parameters) Add(name string, value float64) *Parameter {
	p := newParameter(name, value)
	if _, ok := ps.table[name]; !ok {
		ps.names = append(ps.names, name)
	}
	ps.table[name] = p
	return p
}

// Get returns the named parameter or nil.
func (ps *Parameters) Get(name string) *Parameter {
	return ps.table[name]
}

// Has reports whether the named parameter exists.
func (ps *Parameters) Has(name string) bool {
	_, ok := ps.table[name]
	return ok
}

// Delete removes the named parameter; unknown names are ignored.
func (ps *Parameters) Delete(name string) {
	if _, ok := ps.table[name]; !ok {
		return
	}
	delete(ps.table, name)
	ps.names = slices.DeleteFunc(ps.names, func(n string) bool { return n == name })
}

// Names returns the parameter names in insertion order.
func (ps *Parameters) Names() []string {
	return slices.Clone(ps.names)
}

// Len returns the number of parameters.
func (ps *Parameters) Len() int {
	return len(ps.names)
}

// Clone returns a deep copy of the set.
func (ps *Parameters) Clone() *Parameters {
	out := NewParameters()
	for _, name := range ps.names {
		p := *ps.table[name]
		out.names = append(out.names, name)
		out.table[name] = &p
	}
	return out
}

// Merge copies values from other into this set. Values of names present in
// both sets are updated in place, keeping local bounds, vary flags and
// expressions; names only in other are added wholesale.
func (ps *Parameters) Merge(other *Parameters) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		src := other.table[name]
		if dst, ok := ps.table[name]; ok {
			dst.Value = src.Value
			continue
		}
		cp := *src
		ps.names = append(ps.names, name)
		ps.table[name] = &cp
	}
}

// Resolve evaluates every parameter, following symbolic expressions, and
// returns the name-to-value map. Expression parameters have their Value
// updated to the evaluated result. Cyclic or dangling references and
// expression failures return ErrUnresolvable.
func (ps *Parameters) Resolve() (map[string]float64, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	vals := make(map[string]float64, len(ps.names))
	state := make(map[string]int, len(ps.names))

	var resolve func(name string) (float64, error)
	resolve = func(name string) (float64, error) {
		p := ps.table[name]
		if p == nil {
			return 0, fmt.Errorf("%w: no parameter %q", ErrUnresolvable, name)
		}
		switch state[name] {
		case done:
			return vals[name], nil
		case visiting:
			return 0, fmt.Errorf("%w: cyclic reference through %q", ErrUnresolvable, name)
		}
		state[name] = visiting

		v := p.Value
		if p.Expr != "" {
			ev, err := Eval(p.Expr, resolve)
			if err != nil {
				return 0, fmt.Errorf("%w: %q: %w", ErrUnresolvable, name, err)
			}
			v = ev
			p.Value = v
		}
		state[name] = done
		vals[name] = v
		return v, nil
	}

	for _, name := range ps.names {
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	return vals, nil
}
