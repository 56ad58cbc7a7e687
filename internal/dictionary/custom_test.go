package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCustomLookup(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(" a remote star system \n"))
	}))
	defer server.Close()

	source := NewCustom("Custom (URL)", server.URL+"/dict/@L@/@@@@", 100)
	definition, err := source.Lookup(context.Background(), "galaxy", "en")
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}
	if definition != "a remote star system" {
		t.Errorf("Lookup() = %q, want trimmed body", definition)
	}
	if gotPath != "/dict/en/galaxy" {
		t.Errorf("Unexpected request path: %q", gotPath)
	}
}

func TestCustomEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  "))
	}))
	defer server.Close()

	source := NewCustom("Custom (URL)", server.URL+"/@@@@", 100)
	_, err := source.Lookup(context.Background(), "galaxy", "en")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCustomNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewCustom("Custom (URL)", server.URL+"/@@@@", 100)
	_, err := source.Lookup(context.Background(), "galaxy", "en")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
