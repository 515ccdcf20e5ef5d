package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-pipeparams/pkg/export"
	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
	"github.com/goliatone/go-pipeparams/pkg/renderers/html"
	"github.com/goliatone/go-pipeparams/pkg/renderers/tui"
	"github.com/goliatone/go-pipeparams/pkg/schema"
	"github.com/goliatone/go-pipeparams/pkg/server"
	"github.com/goliatone/go-pipeparams/pkg/store"
)

func main() {
	schemaPath := flag.String("schema", "", "parameter schema (CSV or YAML); embedded defaults if empty")
	rendererName := flag.String("renderer", "html", "renderer to use: html, tui, or json")
	output := flag.String("output", "", "output file (stdout if empty)")
	overrides := flag.String("overrides", "", "overrides store path (.db uses SQLite, anything else YAML)")
	serveAddr := flag.String("serve", "", "serve HTTP on this address instead of rendering")
	doExport := flag.Bool("export", false, "emit the registry as an OpenAPI document")
	title := flag.String("title", "Pipeline Parameters", "panel title")
	flag.Parse()

	ctx := context.Background()

	rows, err := loadRows(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	registry := params.NewRegistry()
	if err := registry.Load(rows); err != nil {
		log.Fatalf("Failed to load registry: %v", err)
	}

	var overridesStore store.Store
	if *overrides != "" {
		overridesStore, err = openStore(*overrides)
		if err != nil {
			log.Fatalf("Failed to open overrides store: %v", err)
		}
		if err := overridesStore.Load(ctx, registry); err != nil {
			log.Printf("Warning: some overrides were skipped: %v", err)
		}
	}

	if *doExport {
		doc, err := export.JSON(registry, export.WithTitle(*title))
		if err != nil {
			log.Fatalf("Failed to export document: %v", err)
		}
		writeOutput(*output, doc)
		return
	}

	if *serveAddr != "" {
		serve(registry, overridesStore, *serveAddr, *title)
		return
	}

	out, err := renderRegistry(ctx, registry, *rendererName, *title)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			log.Fatal("Aborted")
		}
		log.Fatalf("Failed to render: %v", err)
	}

	// A TUI session edits the registry; keep the store in sync.
	if *rendererName == "tui" && overridesStore != nil {
		if err := overridesStore.Save(ctx, registry); err != nil {
			log.Fatalf("Failed to save overrides: %v", err)
		}
	}

	writeOutput(*output, out)
}

func loadRows(path string) ([]schema.Row, error) {
	if path == "" {
		return schema.DefaultRows()
	}
	return schema.Load(schema.SourceFromFile(path))
}

func openStore(path string) (store.Store, error) {
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		return store.NewSQLiteStore(path)
	}
	return store.NewFileStore(path)
}

func renderRegistry(ctx context.Context, registry *params.Registry, name, title string) ([]byte, error) {
	options := render.RenderOptions{Title: title}
	switch name {
	case "html":
		renderer, err := html.New()
		if err != nil {
			return nil, err
		}
		return renderer.Render(ctx, registry, options)
	case "tui":
		renderer, err := tui.New()
		if err != nil {
			return nil, err
		}
		return renderer.Render(ctx, registry, options)
	case "json":
		values := make(map[string]string)
		for _, desc := range registry.Descriptors() {
			value, err := registry.Get(desc.Key)
			if err != nil {
				return nil, err
			}
			values[desc.Key] = value.String()
		}
		return json.MarshalIndent(values, "", "  ")
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}

func serve(registry *params.Registry, overridesStore store.Store, addr, title string) {
	htmlRenderer, err := html.New()
	if err != nil {
		log.Fatalf("Failed to build HTML renderer: %v", err)
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(htmlRenderer)

	options := []server.Option{
		server.WithRenderers(renderers),
		server.WithPanelOptions(render.RenderOptions{Title: title}),
	}
	if overridesStore != nil {
		options = append(options, server.WithStore(overridesStore))
	}

	srv, err := server.New(registry, options...)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Serving parameters on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

func writeOutput(path string, data []byte) {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", path)
		return
	}
	fmt.Println(string(data))
}
