package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFile writes csv to dir/name, creating dir if needed, and returns the
// path written.
func WriteFile(dir, name, csv string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		return "", fmt.Errorf("failed to write csv to %s: %w", path, err)
	}

	slog.Info("exported csv", "file", path, "bytes", len(csv))
	return path, nil
}
