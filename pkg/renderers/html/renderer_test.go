package html

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
	"github.com/goliatone/go-pipeparams/pkg/schema"
)

func newRegistry(t *testing.T) *params.Registry {
	t.Helper()
	rows := []schema.Row{
		{Key: "highpass", Alias: "High-Pass Filter", Group: "Filtering", Default: "1", Unit: "Hz", GUIType: "slider", GUIArgs: "{'min_val': 0, 'max_val': 300}"},
		{Key: "ica_method", Group: "ICA", Default: "fastica", GUIType: "combo", GUIArgs: "{'options': ['fastica', 'infomax', 'picard']}"},
		{Key: "ch_types", Group: "General", Default: "['grad']", GUIType: "checklist", GUIArgs: "{'options': ['grad', 'mag', 'eeg']}"},
		{Key: "overwrite", Group: "General", Default: "False", GUIType: "boolean", Description: "Overwrite <b>existing</b> files <script>alert(1)</script>"},
	}
	reg := params.NewRegistry()
	if err := reg.Load(rows); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func renderPanel(t *testing.T, reg *params.Registry, options render.RenderOptions) string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), reg, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_Panel(t *testing.T) {
	reg := newRegistry(t)
	got := renderPanel(t, reg, render.RenderOptions{Title: "Pipeline Settings"})

	for _, want := range []string{
		"<title>Pipeline Settings</title>",
		`data-group="Filtering"`,
		"High-Pass Filter",
		`type="range"`,
		` min="0" max="300"`,
		`data-widget="combo"`,
		"<option selected>fastica</option>",
		`value="grad" checked`,
		`value="mag">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("panel missing %q", want)
		}
	}
}

func TestRenderer_SanitizesDescriptions(t *testing.T) {
	reg := newRegistry(t)
	got := renderPanel(t, reg, render.RenderOptions{})

	if strings.Contains(got, "<script>") {
		t.Fatal("script tag survived sanitization")
	}
	if !strings.Contains(got, "<b>existing</b>") {
		t.Fatal("benign markup was stripped")
	}
}

func TestRenderer_OverrideAndErrors(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.Set("highpass", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := renderPanel(t, reg, render.RenderOptions{
		Errors: map[string][]string{"ica_method": {"value 'unknown' is not an option"}},
	})

	if !strings.Contains(got, `value="40"`) {
		t.Fatal("override value not rendered")
	}
	if !strings.Contains(got, "pp-overridden") {
		t.Fatal("override badge missing")
	}
	if !strings.Contains(got, "value 'unknown' is not an option") {
		t.Fatal("field error missing")
	}
}

func TestRenderer_GroupFilter(t *testing.T) {
	reg := newRegistry(t)
	got := renderPanel(t, reg, render.RenderOptions{Groups: []string{"ICA"}})

	if strings.Contains(got, `data-group="Filtering"`) {
		t.Fatal("filtered group rendered")
	}
	if !strings.Contains(got, `data-group="ICA"`) {
		t.Fatal("requested group missing")
	}

	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), reg, render.RenderOptions{Groups: []string{"Nope"}}); err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestRenderer_ThemeTokens(t *testing.T) {
	reg := newRegistry(t)
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name: "acme",
			Tokens: map[string]string{
				"surface": "#ffffff",
				"accent":  "#0b5fff",
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens: map[string]string{"surface": "#10131a"},
				},
			},
		},
	}
	got := renderPanel(t, reg, render.RenderOptions{Theme: selection})

	if !strings.Contains(got, "--surface: #10131a;") {
		t.Fatal("variant token did not override base token")
	}
	if !strings.Contains(got, "--accent: #0b5fff;") {
		t.Fatal("base token missing")
	}
}
