// Package store persists registry overrides across process restarts. A store
// is a thin collaborator: it replays persisted values through Registry.Set so
// the registry's validation contract is the single gatekeeper, and it never
// installs anything the schema would reject.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
)

// Store loads and saves the override layer of a registry.
type Store interface {
	Load(ctx context.Context, reg *params.Registry) error
	Save(ctx context.Context, reg *params.Registry) error
}

// applyOverrides replays persisted key/literal pairs through the registry.
// Stale entries (keys the schema no longer defines, values a tightened
// constraint now rejects) are skipped and reported together so one bad entry
// does not discard the rest of the file.
func applyOverrides(reg *params.Registry, raw map[string]string) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value, err := literal.Decode(raw[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("store: override %q: %w", key, err))
			continue
		}
		if err := reg.Set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("store: override %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// serializeOverrides renders the current override layer to canonical literal
// text, keyed by parameter.
func serializeOverrides(reg *params.Registry) map[string]string {
	overrides := reg.Overrides()
	out := make(map[string]string, len(overrides))
	for key, value := range overrides {
		out[key] = value.String()
	}
	return out
}
