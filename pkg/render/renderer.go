package render

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pipeparams/pkg/params"
)

// Renderer converts a loaded parameter registry into a byte representation
// of a settings surface (HTML panel, terminal session transcript, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, reg *params.Registry, options RenderOptions) ([]byte, error)
}

// RenderOptions describe per-request data renderers can use to customise
// their output without touching registry state.
type RenderOptions struct {
	// Title overrides the settings panel heading.
	Title string
	// Groups restricts rendering to the named groups, in the given order.
	// Empty means every group in schema order.
	Groups []string
	// Errors surfaces validation feedback keyed by parameter key, typically
	// the rule text of a ConstraintViolation from a rejected write.
	Errors map[string][]string
	// Theme carries a resolved go-theme selection; renderers that produce
	// markup translate its tokens into CSS custom properties.
	Theme *theme.Selection
}
