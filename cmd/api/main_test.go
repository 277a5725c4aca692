package main

import (
	"testing"

	"github.com/bananalab/canvas-api/internal/config"
	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

func TestNewStorageDefaultsToLocal(t *testing.T) {
	cfg := &config.Config{
		StorageDriver:  "local",
		StoragePath:    t.TempDir(),
		StorageBaseURL: "http://localhost:8080/files",
	}

	store, err := newStorage(cfg)
	if err != nil {
		t.Fatalf("newStorage: %v", err)
	}
	if _, ok := store.(*storage.LocalStorage); !ok {
		t.Fatalf("expected local storage, got %T", store)
	}
}

func TestStorageBaseURLTrimsTrailingSlash(t *testing.T) {
	cfg := &config.Config{
		StorageDriver:  "local",
		StoragePath:    t.TempDir(),
		StorageBaseURL: "http://localhost:8080/files",
	}
	store, err := newStorage(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := storageBaseURL(store); got != "http://localhost:8080/files" {
		t.Fatalf("base url = %q", got)
	}
}
