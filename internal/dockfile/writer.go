package dockfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/UnknownOlympus/embellish/internal/models"
)

const outputMode = 0o644

// Write stores the dock set at path, replacing any existing file.
// Data goes to a temporary file in the same directory first, so a failed write
// leaves the previous output untouched.
func Write(path string, set *models.DockSet) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary dock file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err = tmp.Chmod(outputMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set dock file permissions: %w", err)
	}

	if err = WriteTo(tmp, set); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary dock file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace dock file: %w", err)
	}

	return nil
}

// WriteTo encodes the header and every dock as comma-separated rows.
// Values are emitted in header order; missing keys become empty fields.
func WriteTo(w io.Writer, set *models.DockSet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(set.Header); err != nil {
		return fmt.Errorf("failed to write dock header: %w", err)
	}

	record := make([]string, len(set.Header))
	for i, dock := range set.Docks {
		for j, column := range set.Header {
			record[j] = dock[column]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write dock row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush dock file: %w", err)
	}

	return nil
}
