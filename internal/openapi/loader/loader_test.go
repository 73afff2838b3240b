package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	pkgopenapi "github.com/goliatone/go-formlife/pkg/openapi"
)

func TestLoaderReadsFileAndFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(path, []byte("openapi: 3.0.3\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(fstest.MapFS{
		"specs/api.json": &fstest.MapFile{Data: []byte(`{"openapi":"3.0.3"}`)},
	})))

	doc, err := l.Load(context.Background(), pkgopenapi.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if string(doc.Raw()) != "openapi: 3.0.3\n" || doc.Location() != path {
		t.Fatalf("unexpected document %q from %s", doc.Raw(), doc.Location())
	}

	doc, err = l.Load(context.Background(), pkgopenapi.SourceFromFS("specs/api.json"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if doc.Source().Kind() != pkgopenapi.SourceKindFS {
		t.Fatalf("unexpected source kind %s", doc.Source().Kind())
	}
}

func TestLoaderErrors(t *testing.T) {
	l := New(pkgopenapi.NewLoaderOptions())
	ctx := context.Background()

	if _, err := l.Load(ctx, nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := l.Load(ctx, pkgopenapi.SourceFromFS("api.json")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
	if _, err := l.Load(ctx, pkgopenapi.SourceFromFile(filepath.Join(t.TempDir(), "missing.json"))); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
