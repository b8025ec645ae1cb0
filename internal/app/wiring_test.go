package app

import (
	"context"
	"path/filepath"
	"testing"

	"cv-creator/internal/config"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/versions"
)

func TestOpenBackendSQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "cv.db")}

	b, err := OpenBackend(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := versions.New(b, "ns").Save(ctx, "Draft1", model.Profile{FirstName: "Ana"}, domain.TemplateModern, domain.ColorRed); err != nil {
		t.Fatal(err)
	}
	_ = b.Close()

	b, err = OpenBackend(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	snap, err := versions.New(b, "ns").Load(ctx, "Draft1")
	if err != nil || snap.Data.FirstName != "Ana" {
		t.Fatalf("snap = %+v, %v", snap, err)
	}
}

func TestOpenBackendUnknown(t *testing.T) {
	if _, err := OpenBackend(context.Background(), config.StoreConfig{Backend: "mongo"}); err == nil {
		t.Fatal("expected an error")
	}
	b, err := OpenBackend(context.Background(), config.StoreConfig{Backend: config.BackendMemory})
	if err != nil || b == nil {
		t.Fatalf("memory = %v, %v", b, err)
	}
}
