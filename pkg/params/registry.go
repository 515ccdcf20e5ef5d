package params

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/schema"
)

// Registry is the process-wide parameter table: an immutable descriptor set
// built once from the schema, layered with a mutable, validated override
// store. Construct one instance and pass it to both the GUI and the
// pipeline consumers.
type Registry struct {
	mu          sync.RWMutex
	loaded      bool
	descriptors map[string]Descriptor
	order       []string
	groupOrder  []string
	groups      map[string][]string
	overrides   map[string]literal.Value
}

// NewRegistry returns an empty registry. Load must run before any other
// operation.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]Descriptor),
		groups:      make(map[string][]string),
		overrides:   make(map[string]literal.Value),
	}
}

// Load decodes every schema row into a descriptor and installs the immutable
// table. It fails fast on the first undecodable default, unrecognized
// constraint key, or default that violates its own constraints, leaving the
// registry unloaded. Load runs once per instance.
func (r *Registry) Load(rows []schema.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return errors.New("params: registry is already loaded")
	}
	if len(rows) == 0 {
		return errors.New("params: schema contains no rows")
	}

	descriptors := make(map[string]Descriptor, len(rows))
	order := make([]string, 0, len(rows))
	var groupOrder []string
	groups := make(map[string][]string)

	for _, row := range rows {
		if row.Key == "" {
			return errors.New("params: schema row with empty key")
		}
		if _, exists := descriptors[row.Key]; exists {
			return fmt.Errorf("params: duplicate parameter %q", row.Key)
		}

		widget, err := ParseWidgetKind(row.GUIType)
		if err != nil {
			return fmt.Errorf("params: parameter %q: %w", row.Key, err)
		}
		constraints, err := DecodeConstraints(widget, row.GUIArgs)
		if err != nil {
			return fmt.Errorf("params: parameter %q: %w", row.Key, err)
		}
		defaultValue, err := literal.Decode(row.Default)
		if err != nil {
			return fmt.Errorf("params: parameter %q: %w", row.Key, err)
		}

		desc := Descriptor{
			Key:         row.Key,
			Alias:       row.Alias,
			Group:       row.Group,
			DefaultRaw:  row.Default,
			Default:     defaultValue,
			Unit:        row.Unit,
			Description: row.Description,
			Widget:      widget,
			Constraints: constraints,
		}
		if v := Validate(desc, defaultValue); v != nil {
			return fmt.Errorf("params: parameter %q: default violates its own constraints: %w", row.Key, v)
		}

		descriptors[row.Key] = desc
		order = append(order, row.Key)
		if _, seen := groups[desc.Group]; !seen {
			groupOrder = append(groupOrder, desc.Group)
		}
		groups[desc.Group] = append(groups[desc.Group], row.Key)
	}

	r.descriptors = descriptors
	r.order = order
	r.groupOrder = groupOrder
	r.groups = groups
	r.loaded = true
	return nil
}

// Get returns the effective value for a key: the override when one is
// installed, the schema default otherwise.
func (r *Registry) Get(key string) (literal.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[key]
	if !ok {
		return literal.Value{}, &UnknownParameterError{Key: key}
	}
	if override, ok := r.overrides[key]; ok {
		return override, nil
	}
	return desc.Default, nil
}

// Set validates the proposed value against the descriptor's constraints and
// installs it as an override. On violation the store is left untouched and
// the ConstraintViolation is returned. Native Go values are converted
// through the literal package so every writer shares one validation path.
func (r *Registry) Set(key string, value any) error {
	decoded, err := literal.FromGo(value)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	desc, ok := r.descriptors[key]
	if !ok {
		return &UnknownParameterError{Key: key}
	}
	if v := Validate(desc, decoded); v != nil {
		return v
	}
	r.overrides[key] = decoded
	return nil
}

// Reset removes the override for a key, reverting it to the schema default.
// Resetting a key with no override is a no-op.
func (r *Registry) Reset(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.descriptors[key]; !ok {
		return &UnknownParameterError{Key: key}
	}
	delete(r.overrides, key)
	return nil
}

// ResetAll removes every override.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides = make(map[string]literal.Value)
}

// HasOverride reports whether a key currently carries an override.
func (r *Registry) HasOverride(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.overrides[key]
	return ok
}

// Overrides returns a copy of the current override set, keyed by parameter.
// Settings stores use it to serialize state on shutdown.
func (r *Registry) Overrides() map[string]literal.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]literal.Value, len(r.overrides))
	for key, value := range r.overrides {
		out[key] = value
	}
	return out
}

// Descriptor returns the immutable descriptor for a key.
func (r *Registry) Descriptor(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[key]
	return desc, ok
}

// Descriptors returns every descriptor in schema order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.descriptors[key])
	}
	return out
}

// Keys returns every parameter key in schema order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Groups returns the group names in order of first appearance in the schema.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.groupOrder...)
}

// Group returns the descriptors sharing a group, in schema order. An unknown
// group yields an empty slice, not an error.
func (r *Registry) Group(name string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.groups[name]
	out := make([]Descriptor, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.descriptors[key])
	}
	return out
}
