// Package tui runs an interactive terminal session over a parameter
// registry, prompting per widget kind and validating every entry before it
// lands as an override.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		maxAttempts:  3,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render walks every requested group, prompts for each parameter, and
// serializes the resulting values once the session completes.
func (r *Renderer) Render(ctx context.Context, reg *params.Registry, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errors.New("tui: registry is required")
	}

	names := options.Groups
	if len(names) == 0 {
		names = reg.Groups()
	}

	for _, name := range names {
		descriptors := reg.Group(name)
		if len(descriptors) == 0 {
			return nil, fmt.Errorf("tui: unknown group %q", name)
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("── %s ──", name)); err != nil {
			return nil, err
		}
		for _, desc := range descriptors {
			for _, msg := range options.Errors[desc.Key] {
				if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", desc.Key, msg)); err != nil {
					return nil, err
				}
			}
			if err := r.promptParameter(ctx, reg, desc); err != nil {
				return nil, err
			}
		}
	}

	return r.serialize(reg, names)
}

func (r *Renderer) promptParameter(ctx context.Context, reg *params.Registry, desc params.Descriptor) error {
	current, err := reg.Get(desc.Key)
	if err != nil {
		return fmt.Errorf("tui: resolve %q: %w", desc.Key, err)
	}

	switch desc.Widget {
	case params.WidgetBoolean:
		return r.promptBoolean(ctx, reg, desc, current)
	case params.WidgetCombo:
		return r.promptCombo(ctx, reg, desc, current)
	case params.WidgetChecklist:
		return r.promptChecklist(ctx, reg, desc, current)
	default:
		return r.promptLiteral(ctx, reg, desc, current)
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, reg *params.Registry, desc params.Descriptor, current literal.Value) error {
	answer, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: promptMessage(desc),
		Default: current.Kind == literal.KindBool && current.BoolVal,
		Help:    desc.Description,
	})
	if err != nil {
		return err
	}
	return reg.Set(desc.Key, literal.Bool(answer))
}

func (r *Renderer) promptCombo(ctx context.Context, reg *params.Registry, desc params.Descriptor, current literal.Value) error {
	if len(desc.Constraints.Options) == 0 {
		return r.promptLiteral(ctx, reg, desc, current)
	}

	var labels []string
	var values []literal.Value
	if desc.Constraints.NoneSelect {
		labels = append(labels, "None")
		values = append(values, literal.None())
	}
	for _, opt := range desc.Constraints.Options {
		labels = append(labels, displayText(opt))
		values = append(values, opt)
	}

	defaultIndex := 0
	for i, value := range values {
		if value.Equal(current) {
			defaultIndex = i
			break
		}
	}

	chosen, err := r.driver.Select(ctx, SelectConfig{
		Message:      promptMessage(desc),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         desc.Description,
	})
	if err != nil {
		return err
	}
	if chosen < 0 || chosen >= len(values) {
		return fmt.Errorf("tui: selection out of range for %q", desc.Key)
	}
	return reg.Set(desc.Key, values[chosen])
}

func (r *Renderer) promptChecklist(ctx context.Context, reg *params.Registry, desc params.Descriptor, current literal.Value) error {
	labels := make([]string, 0, len(desc.Constraints.Options))
	for _, opt := range desc.Constraints.Options {
		labels = append(labels, displayText(opt))
	}

	var defaults []int
	for i, opt := range desc.Constraints.Options {
		for _, item := range current.ListVal {
			if opt.Equal(item) {
				defaults = append(defaults, i)
				break
			}
		}
	}

	chosen, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  promptMessage(desc),
		Options:  labels,
		Defaults: defaults,
		Help:     desc.Description,
	})
	if err != nil {
		return err
	}

	selection := make([]literal.Value, 0, len(chosen))
	for _, idx := range chosen {
		if idx >= 0 && idx < len(desc.Constraints.Options) {
			selection = append(selection, desc.Constraints.Options[idx])
		}
	}
	return reg.Set(desc.Key, literal.List(selection...))
}

// promptLiteral covers every free-text widget. Input is decoded with the
// literal grammar and validated against the descriptor; rejected entries are
// reported and re-prompted up to maxAttempts, after which the parameter keeps
// its previous value.
func (r *Renderer) promptLiteral(ctx context.Context, reg *params.Registry, desc params.Descriptor, current literal.Value) error {
	validator := func(text string) error {
		value, err := literal.Decode(text)
		if err != nil {
			return err
		}
		if v := params.Validate(desc, value); v != nil {
			return v
		}
		return nil
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		text, err := r.driver.Input(ctx, InputConfig{
			Message:   promptMessage(desc),
			Default:   current.String(),
			Help:      desc.Description,
			Validator: validator,
		})
		if err != nil {
			return err
		}

		value, err := literal.Decode(text)
		if err == nil {
			err = reg.Set(desc.Key, value)
		}
		if err == nil {
			return nil
		}

		var violation *params.ConstraintViolation
		var literalErr *literal.LiteralError
		if !errors.As(err, &violation) && !errors.As(err, &literalErr) {
			return err
		}
		if infoErr := r.driver.Info(ctx, fmt.Sprintf("%s: %v", desc.Key, err)); infoErr != nil {
			return infoErr
		}
	}

	return r.driver.Info(ctx, fmt.Sprintf("%s: keeping %s", desc.Key, current))
}

func (r *Renderer) serialize(reg *params.Registry, groups []string) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var buf bytes.Buffer
		for _, name := range groups {
			fmt.Fprintf(&buf, "[%s]\n", name)
			for _, desc := range reg.Group(name) {
				value, err := reg.Get(desc.Key)
				if err != nil {
					return nil, fmt.Errorf("tui: resolve %q: %w", desc.Key, err)
				}
				fmt.Fprintf(&buf, "%s = %s\n", desc.Key, value)
			}
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}

	out := make(map[string]string)
	for _, name := range groups {
		for _, desc := range reg.Group(name) {
			value, err := reg.Get(desc.Key)
			if err != nil {
				return nil, fmt.Errorf("tui: resolve %q: %w", desc.Key, err)
			}
			out[desc.Key] = value.String()
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func promptMessage(desc params.Descriptor) string {
	if desc.Unit != "" {
		return fmt.Sprintf("%s (%s)", desc.Label(), desc.Unit)
	}
	return desc.Label()
}

func displayText(v literal.Value) string {
	if v.Kind == literal.KindString {
		return v.StrVal
	}
	return v.String()
}
