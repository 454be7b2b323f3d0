package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jimezsa/formcli/internal/models"
	"github.com/jimezsa/formcli/internal/network"
)

func TestFileName(t *testing.T) {
	record := models.FormRecord{Number: "Form 1040", Year: 2019}
	if got := FileName(record); got != "Form 1040 - 2019.pdf" {
		t.Fatalf("FileName() = %q", got)
	}
}

func TestSaveAll_ExistingDirectoryFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "1040")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	client, err := network.NewClient(nil, network.Trace{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	records := []models.FormRecord{{Number: "1040", Year: 2019, DownloadURL: "https://example.com/a.pdf"}}
	err = SaveAll(context.Background(), client, dir, records, nil)
	if !errors.Is(err, ErrDirExists) {
		t.Fatalf("SaveAll() error = %v, want ErrDirExists", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("files written despite pre-existing directory: %v", entries)
	}
}

func TestSaveAll_WritesOnePDFPerRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%%PDF-1.4 %s", r.URL.Path)
	}))
	defer server.Close()

	client, err := network.NewClient(nil, network.Trace{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	records := []models.FormRecord{
		{Number: "Form 1040", Year: 2019, DownloadURL: server.URL + "/f1040--2019.pdf"},
		{Number: "Form 1040", Year: 2020, DownloadURL: server.URL + "/f1040--2020.pdf"},
	}

	dir := filepath.Join(t.TempDir(), "form 1040")
	var savedPaths []string
	err = SaveAll(context.Background(), client, dir, records, func(path string) {
		savedPaths = append(savedPaths, path)
	})
	if err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	if len(savedPaths) != 2 {
		t.Fatalf("saved callback ran %d times, want 2", len(savedPaths))
	}

	for _, record := range records {
		path := filepath.Join(dir, FileName(record))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected file %q: %v", path, err)
		}
		want := fmt.Sprintf("%%PDF-1.4 /f1040--%d.pdf", record.Year)
		if string(data) != want {
			t.Fatalf("file %q content = %q, want %q", path, data, want)
		}
	}
}
