package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ExportSnapshot writes the index as a zstd-compressed JSON snapshot,
// the hand-off format between the external indexer and this tool.
func ExportSnapshot(idx *CodeIndex, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to init zstd writer: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(idx); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return f.Close()
}

// ImportSnapshot reads a zstd-compressed index snapshot.
func ImportSnapshot(path string) (*CodeIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to init zstd reader: %w", err)
	}
	defer dec.Close()

	var idx CodeIndex
	if err := json.NewDecoder(dec).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &idx, nil
}
