// Package html renders a parameter registry as a standalone settings panel.
// Templates are pongo2, descriptions pass through bluemonday, and an optional
// go-theme selection is translated into CSS custom properties.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
)

const panelTemplate = "templates/panel.tmpl"

// Option configures the HTML renderer before construction.
type Option func(*Renderer)

// WithTemplates overrides the embedded template set, e.g. for a custom panel
// layout shipped next to the binary.
func WithTemplates(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.files = files
		}
	}
}

// WithSanitizer swaps the bluemonday policy applied to descriptions.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.sanitizer = policy
		}
	}
}

// Renderer implements render.Renderer producing a full HTML document.
type Renderer struct {
	mu        sync.Mutex
	files     fs.FS
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	sanitizer *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs an HTML renderer backed by the embedded templates unless
// overridden through options.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		files:     templatesFS,
		templates: make(map[string]*pongo2.Template),
		sanitizer: bluemonday.UGCPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.set = pongo2.NewSet("pipeparams", pongo2.NewFSLoader(r.files))
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the MIME type of rendered output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the settings panel for every requested group.
func (r *Renderer) Render(ctx context.Context, reg *params.Registry, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("html: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.New("html: registry is required")
	}

	tmpl, err := r.getTemplate(panelTemplate)
	if err != nil {
		return nil, err
	}

	groups, err := r.buildGroups(reg, options)
	if err != nil {
		return nil, err
	}

	title := options.Title
	if title == "" {
		title = "Pipeline Parameters"
	}

	viewContext := pongo2.Context{
		"title":      title,
		"groups":     groups,
		"theme_vars": themeVars(options.Theme),
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return nil, fmt.Errorf("html: execute template %q: %w", panelTemplate, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) getTemplate(path string) (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}
	r.templates[path] = tmpl
	return tmpl, nil
}

func (r *Renderer) buildGroups(reg *params.Registry, options render.RenderOptions) ([]map[string]any, error) {
	names := options.Groups
	if len(names) == 0 {
		names = reg.Groups()
	}

	groups := make([]map[string]any, 0, len(names))
	for _, name := range names {
		descriptors := reg.Group(name)
		if len(descriptors) == 0 {
			return nil, fmt.Errorf("html: unknown group %q", name)
		}
		fields := make([]map[string]any, 0, len(descriptors))
		for _, desc := range descriptors {
			field, err := r.buildField(reg, desc, options.Errors[desc.Key])
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		groups = append(groups, map[string]any{
			"name":   name,
			"fields": fields,
		})
	}
	return groups, nil
}

func (r *Renderer) buildField(reg *params.Registry, desc params.Descriptor, fieldErrors []string) (map[string]any, error) {
	value, err := reg.Get(desc.Key)
	if err != nil {
		return nil, fmt.Errorf("html: resolve %q: %w", desc.Key, err)
	}

	field := map[string]any{
		"key":         desc.Key,
		"label":       desc.Label(),
		"widget":      string(desc.Widget),
		"value":       displayText(value),
		"unit":        desc.Unit,
		"description": r.sanitizer.Sanitize(desc.Description),
		"overridden":  reg.HasOverride(desc.Key),
		"none_select": desc.Constraints.NoneSelect,
		"is_none":     value.IsNone(),
		"errors":      fieldErrors,
	}

	field["range_attrs"] = rangeAttrs(desc.Constraints)
	if len(desc.Constraints.Options) > 0 {
		options := make([]map[string]any, 0, len(desc.Constraints.Options))
		for _, opt := range desc.Constraints.Options {
			options = append(options, map[string]any{
				"text":     displayText(opt),
				"selected": opt.Equal(value),
			})
		}
		field["options"] = options
	}
	if len(desc.Constraints.Types) > 0 {
		field["types"] = desc.Constraints.Types
	}

	switch desc.Widget {
	case params.WidgetBoolean:
		field["checked"] = value.Kind == literal.KindBool && value.BoolVal
	case params.WidgetChecklist:
		field["selection"] = checklistSelection(desc, value)
	}
	return field, nil
}

func checklistSelection(desc params.Descriptor, value literal.Value) []map[string]any {
	out := make([]map[string]any, 0, len(desc.Constraints.Options))
	for _, opt := range desc.Constraints.Options {
		checked := false
		for _, item := range value.ListVal {
			if opt.Equal(item) {
				checked = true
				break
			}
		}
		out = append(out, map[string]any{
			"text":    displayText(opt),
			"checked": checked,
		})
	}
	return out
}

// displayText is the panel-facing form of a value. Strings drop their quotes
// so inputs and option labels read naturally; everything else keeps its
// canonical literal text.
func displayText(v literal.Value) string {
	if v.Kind == literal.KindString {
		return v.StrVal
	}
	return v.String()
}

// rangeAttrs renders min/max/step bounds as ready-to-splice HTML attributes.
// Django-style templates cannot distinguish an absent bound from zero, so the
// attribute text is assembled here instead.
func rangeAttrs(c params.Constraints) string {
	var b strings.Builder
	if c.MinVal != nil {
		fmt.Fprintf(&b, ` min="%s"`, formatBound(*c.MinVal))
	}
	if c.MaxVal != nil {
		fmt.Fprintf(&b, ` max="%s"`, formatBound(*c.MaxVal))
	}
	if c.Step != nil {
		fmt.Fprintf(&b, ` step="%s"`, formatBound(*c.Step))
	}
	return b.String()
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// themeVars flattens a theme selection into sorted CSS custom property lines.
// Variant tokens override base manifest tokens of the same name.
func themeVars(selection *theme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for name, value := range selection.Manifest.Tokens {
		tokens[name] = value
	}
	if selection.Variant != "" {
		if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
			for name, value := range variant.Tokens {
				tokens[name] = value
			}
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--%s: %s;", cssVarName(name), tokens[name]))
	}
	return vars
}

func cssVarName(token string) string {
	return strings.ReplaceAll(strings.TrimSpace(token), ".", "-")
}
