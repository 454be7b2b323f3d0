// Package download writes matched form PDFs into a per-query directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/formcli/internal/models"
	"github.com/jimezsa/formcli/internal/network"
)

// ErrDirExists guards against mixing PDF sets from different runs: the
// target directory must not already exist.
var ErrDirExists = errors.New("download directory already exists")

// FileName is the on-disk name for one record's PDF.
func FileName(record models.FormRecord) string {
	return fmt.Sprintf("%s - %d.pdf", record.Number, record.Year)
}

// SaveAll creates dir and writes one PDF per record into it, fetching each
// record's download link. saved, when non-nil, is called after each file
// lands. The directory is created only once all fetch/parse work upstream
// has finished, so a failed run never leaves a half-named folder behind.
func SaveAll(ctx context.Context, client *network.Client, dir string, records []models.FormRecord, saved func(path string)) error {
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", ErrDirExists, dir)
		}
		return err
	}

	for _, record := range records {
		path := filepath.Join(dir, FileName(record))
		if err := saveOne(ctx, client, record.DownloadURL, path); err != nil {
			return fmt.Errorf("download %q: %w", record.DownloadURL, err)
		}
		if saved != nil {
			saved(path)
		}
	}

	return nil
}

func saveOne(ctx context.Context, client *network.Client, target string, path string) error {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
