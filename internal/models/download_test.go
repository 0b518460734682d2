package models

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProgressWriter(t *testing.T) {
	tmpDir := t.TempDir()
	f, err := os.Create(filepath.Join(tmpDir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	pw := &progressWriter{
		writer: f,
		total:  100,
		label:  "test",
	}

	data := make([]byte, 50)
	n, err := pw.Write(data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 50 {
		t.Errorf("Write() n = %d, want 50", n)
	}
	if pw.written != 50 {
		t.Errorf("written = %d, want 50", pw.written)
	}
}

func TestDownload(t *testing.T) {
	payload := strings.Repeat("ggml", 256)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	if err := download(srv.URL, dest); err != nil {
		t.Fatalf("download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dest: %v", err)
	}
	if string(got) != payload {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(payload))
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind at %s", dest+".tmp")
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	err := download(srv.URL, dest)
	if err == nil {
		t.Fatal("download() error = nil, want HTTP error")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("download() error = %v, want mention of HTTP 404", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("file created at %s despite failed download", dest)
	}
}

func TestDownloadConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	if err := download(srv.URL, dest); err == nil {
		t.Fatal("download() error = nil, want connection error")
	}
}

func TestDownloadSkipsExistingModel(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	if err := os.WriteFile(dest, []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Download(dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dest: %v", err)
	}
	if string(got) != "already here" {
		t.Errorf("existing model overwritten, content = %q", got)
	}
}
