package dockfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnknownOlympus/embellish/internal/models"
)

// Errors returned while reading a dock file.
var (
	ErrMissingHeader   = errors.New("dock file has no header row")
	ErrDuplicateColumn = errors.New("dock file header repeats a column")
	ErrRowTooLong      = errors.New("dock row has more fields than the header")
)

// Read opens the dock file at path and parses it with ReadFrom.
func Read(path string) (*models.DockSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dock file: %w", err)
	}
	defer file.Close()

	return ReadFrom(file)
}

// ReadFrom parses comma-separated dock rows with a mandatory header.
// Rows shorter than the header are padded with empty values; coordinates are not validated.
func ReadFrom(r io.Reader) (*models.DockSet, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dock header: %w", err)
	}

	// Handle BOM on first header cell
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	seen := make(map[string]struct{}, len(header))
	for _, column := range header {
		if _, dup := seen[column]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, column)
		}
		seen[column] = struct{}{}
	}

	set := &models.DockSet{Header: header, Docks: []models.Dock{}}

	for line := 2; ; line++ {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return nil, fmt.Errorf("failed to read dock row %d: %w", line, errRead)
		}

		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrRowTooLong, line, len(record), len(header))
		}

		dock := make(models.Dock, len(header))
		for i, column := range header {
			if i < len(record) {
				dock[column] = record[i]
			} else {
				dock[column] = ""
			}
		}
		set.Docks = append(set.Docks, dock)
	}

	return set, nil
}
