package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/render"
	"github.com/goliatone/go-pipeparams/pkg/renderers/html"
	"github.com/goliatone/go-pipeparams/pkg/schema"
	"github.com/goliatone/go-pipeparams/pkg/store"
)

func newRegistry(t *testing.T) *params.Registry {
	t.Helper()
	rows := []schema.Row{
		{Key: "highpass", Group: "Filtering", Default: "1", Unit: "Hz", GUIType: "slider", GUIArgs: "{'min_val': 0, 'max_val': 300}"},
		{Key: "ica_method", Group: "ICA", Default: "fastica", GUIType: "combo", GUIArgs: "{'options': ['fastica', 'infomax', 'picard']}"},
		{Key: "t_epoch", Group: "Epochs", Default: "(-0.5, 1.5)", GUIType: "tuple", GUIArgs: "{'max_val': 10}"},
		{Key: "overwrite", Group: "General", Default: "False", GUIType: "boolean"},
	}
	reg := params.NewRegistry()
	if err := reg.Load(rows); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func newServer(t *testing.T, reg *params.Registry, options ...Option) http.Handler {
	t.Helper()
	htmlRenderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(htmlRenderer)

	options = append([]Option{WithRenderers(renderers)}, options...)
	s, err := New(reg, options...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_ListAndGet(t *testing.T) {
	h := newServer(t, newRegistry(t))

	rec := doJSON(t, h, http.MethodGet, "/params", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}
	var list []paramPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("want 4 params, got %d", len(list))
	}
	if list[0].Key != "highpass" || list[0].Value != "1" || list[0].Unit != "Hz" {
		t.Fatalf("unexpected first param: %+v", list[0])
	}

	rec = doJSON(t, h, http.MethodGet, "/params/t_epoch", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: %d", rec.Code)
	}
	var p paramPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode param: %v", err)
	}
	if p.Value != "(-0.5, 1.5)" || p.Widget != "tuple" {
		t.Fatalf("unexpected payload: %+v", p)
	}

	rec = doJSON(t, h, http.MethodGet, "/params/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown key status: %d", rec.Code)
	}
}

func TestServer_PutValidatesAndPersists(t *testing.T) {
	reg := newRegistry(t)
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	fileStore, err := store.NewFileStore(path)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	h := newServer(t, reg, WithStore(fileStore))

	rec := doJSON(t, h, http.MethodPut, "/params/highpass", valuePayload{Value: 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status: %d body: %s", rec.Code, rec.Body)
	}
	var p paramPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode param: %v", err)
	}
	if p.Value != "40" || !p.Overridden {
		t.Fatalf("unexpected payload after put: %+v", p)
	}

	// Out-of-range writes return 422 and leave the value untouched.
	rec = doJSON(t, h, http.MethodPut, "/params/highpass", valuePayload{Value: 400})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("violation status: %d", rec.Code)
	}
	var failure errorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &failure); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if failure.Rule == "" {
		t.Fatal("violation payload missing rule")
	}
	got, _ := reg.Get("highpass")
	if !got.Equal(literal.Int(40)) {
		t.Fatalf("value changed after rejected put: %v", got)
	}

	// The accepted write reached the store.
	fresh := newRegistry(t)
	if err := fileStore.Load(context.Background(), fresh); err != nil {
		t.Fatalf("reload store: %v", err)
	}
	got, _ = fresh.Get("highpass")
	if !got.Equal(literal.Int(40)) {
		t.Fatalf("persisted value: %v", got)
	}

	rec = doJSON(t, h, http.MethodPut, "/params/nope", valuePayload{Value: 1})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown key put status: %d", rec.Code)
	}
}

func TestServer_DeleteResets(t *testing.T) {
	reg := newRegistry(t)
	h := newServer(t, reg)

	if err := reg.Set("highpass", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec := doJSON(t, h, http.MethodDelete, "/params/highpass", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status: %d", rec.Code)
	}
	got, _ := reg.Get("highpass")
	if !got.Equal(literal.Int(1)) {
		t.Fatalf("want default after delete, got %v", got)
	}

	if err := reg.Set("highpass", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := reg.Set("overwrite", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec = doJSON(t, h, http.MethodDelete, "/params", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset all status: %d", rec.Code)
	}
	if len(reg.Overrides()) != 0 {
		t.Fatal("overrides survived reset all")
	}
}

func TestServer_Groups(t *testing.T) {
	h := newServer(t, newRegistry(t))

	rec := doJSON(t, h, http.MethodGet, "/groups", nil)
	var groups []string
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	want := []string{"Filtering", "ICA", "Epochs", "General"}
	if len(groups) != len(want) {
		t.Fatalf("groups: %v", groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("group order: want %v, got %v", want, groups)
		}
	}

	rec = doJSON(t, h, http.MethodGet, "/groups/ICA", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("group status: %d", rec.Code)
	}
	var list []paramPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	if len(list) != 1 || list[0].Key != "ica_method" {
		t.Fatalf("unexpected group payload: %+v", list)
	}

	rec = doJSON(t, h, http.MethodGet, "/groups/Nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown group status: %d", rec.Code)
	}
}

func TestServer_Panel(t *testing.T) {
	h := newServer(t, newRegistry(t))

	rec := doJSON(t, h, http.MethodGet, "/panel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("panel status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("panel content type: %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `data-group="Filtering"`) {
		t.Fatal("panel missing group markup")
	}

	rec = doJSON(t, h, http.MethodGet, "/panel?group=ICA", nil)
	if strings.Contains(rec.Body.String(), `data-group="Filtering"`) {
		t.Fatal("group filter ignored")
	}
}
