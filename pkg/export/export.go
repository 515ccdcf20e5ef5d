// Package export publishes a parameter registry as an OpenAPI 3 document so
// downstream tooling can introspect parameter types, bounds, and defaults.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
)

// Option configures document generation.
type Option func(*config)

type config struct {
	title   string
	version string
}

// WithTitle overrides the document title.
func WithTitle(title string) Option {
	return func(c *config) {
		if title != "" {
			c.title = title
		}
	}
}

// WithVersion overrides the document version.
func WithVersion(version string) Option {
	return func(c *config) {
		if version != "" {
			c.version = version
		}
	}
}

// Document builds an OpenAPI document with one object schema per parameter
// group. Property defaults reflect the registry's effective values, overrides
// included.
func Document(reg *params.Registry, options ...Option) (*openapi3.T, error) {
	if reg == nil {
		return nil, errors.New("export: registry is required")
	}
	cfg := &config{
		title:   "Pipeline Parameters",
		version: "1.0.0",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	schemas := make(openapi3.Schemas)
	for _, group := range reg.Groups() {
		groupSchema := &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: make(openapi3.Schemas),
		}
		for _, desc := range reg.Group(group) {
			value, err := reg.Get(desc.Key)
			if err != nil {
				return nil, fmt.Errorf("export: resolve %q: %w", desc.Key, err)
			}
			property := parameterSchema(desc)
			property.Default = goValue(value)
			groupSchema.Properties[desc.Key] = openapi3.NewSchemaRef("", property)
		}
		schemas[group] = openapi3.NewSchemaRef("", groupSchema)
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   cfg.title,
			Version: cfg.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: schemas,
		},
	}, nil
}

// JSON renders the document as indented JSON.
func JSON(reg *params.Registry, options ...Option) ([]byte, error) {
	doc, err := Document(reg, options...)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func parameterSchema(desc params.Descriptor) *openapi3.Schema {
	schema := &openapi3.Schema{
		Description: desc.Description,
	}
	if desc.Unit != "" {
		if schema.Description != "" {
			schema.Description += " "
		}
		schema.Description += fmt.Sprintf("(unit: %s)", desc.Unit)
	}
	if desc.Constraints.NoneSelect {
		schema.Nullable = true
	}

	switch desc.Widget {
	case params.WidgetBoolean:
		schema.Type = &openapi3.Types{"boolean"}
	case params.WidgetInteger:
		schema.Type = &openapi3.Types{"integer"}
		schema.Min = desc.Constraints.MinVal
		schema.Max = desc.Constraints.MaxVal
	case params.WidgetFloat, params.WidgetSlider:
		schema.Type = &openapi3.Types{"number"}
		schema.Min = desc.Constraints.MinVal
		schema.Max = desc.Constraints.MaxVal
	case params.WidgetString:
		schema.Type = &openapi3.Types{"string"}
	case params.WidgetCombo:
		schema.Enum = optionValues(desc.Constraints.Options)
		if allStrings(desc.Constraints.Options) {
			schema.Type = &openapi3.Types{"string"}
		}
	case params.WidgetChecklist:
		schema.Type = &openapi3.Types{"array"}
		schema.Items = openapi3.NewSchemaRef("", &openapi3.Schema{
			Enum: optionValues(desc.Constraints.Options),
		})
	case params.WidgetList:
		schema.Type = &openapi3.Types{"array"}
	case params.WidgetTuple:
		schema.Type = &openapi3.Types{"array"}
		schema.Items = openapi3.NewSchemaRef("", &openapi3.Schema{
			Type: &openapi3.Types{"number"},
			Max:  desc.Constraints.MaxVal,
		})
	case params.WidgetDict:
		schema.Type = &openapi3.Types{"object"}
	case params.WidgetMultiType:
		schema.OneOf = typeAlternatives(desc.Constraints.Types, schema)
	case params.WidgetFuncExpr:
		schema.Type = &openapi3.Types{"string"}
	}
	return schema
}

func typeAlternatives(names []string, parent *openapi3.Schema) openapi3.SchemaRefs {
	var refs openapi3.SchemaRefs
	for _, name := range names {
		switch name {
		case "bool":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"boolean"}}))
		case "int":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"integer"}}))
		case "float":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"number"}}))
		case "str":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"string"}}))
		case "tuple", "list", "array":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"array"}}))
		case "dict":
			refs = append(refs, openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{"object"}}))
		case "none":
			parent.Nullable = true
		}
	}
	return refs
}

func optionValues(options []literal.Value) []any {
	out := make([]any, 0, len(options))
	for _, opt := range options {
		out = append(out, goValue(opt))
	}
	return out
}

func allStrings(options []literal.Value) bool {
	for _, opt := range options {
		if opt.Kind != literal.KindString {
			return false
		}
	}
	return len(options) > 0
}

// goValue lowers a literal into plain Go data for JSON serialization. Dict
// ordering is lost here, which is acceptable for schema metadata.
func goValue(v literal.Value) any {
	switch v.Kind {
	case literal.KindBool:
		return v.BoolVal
	case literal.KindInt:
		return v.IntVal
	case literal.KindFloat:
		return v.FloatVal
	case literal.KindString:
		return v.StrVal
	case literal.KindTuple, literal.KindSeries:
		out := make([]any, 0, len(v.Nums))
		for _, n := range v.Nums {
			out = append(out, n)
		}
		return out
	case literal.KindList:
		out := make([]any, 0, len(v.ListVal))
		for _, item := range v.ListVal {
			out = append(out, goValue(item))
		}
		return out
	case literal.KindDict:
		out := make(map[string]any, len(v.DictVal))
		for _, entry := range v.DictVal {
			out[entry.Key] = goValue(entry.Value)
		}
		return out
	default:
		return nil
	}
}
