// file: cmd/deleted/deleted.go

package deleted

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

// DeletedOptions configures the deleted-file listing.
type DeletedOptions struct {
	JSON           bool // Output in JSON format
	OnlyRecoverable bool // Show only entries the heuristic judges recoverable
}

// DefaultDeletedOptions returns default options for Deleted.
func DefaultDeletedOptions() *DeletedOptions {
	return &DeletedOptions{JSON: false, OnlyRecoverable: false}
}

// Deleted lists tombstoned FAT12 entries and their recoverability
// verdicts.
func Deleted(imagePath string, opts *DeletedOptions) error {
	if opts == nil {
		opts = DefaultDeletedOptions()
	}

	buf, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	idx, err := container.Load(buf)
	if err != nil {
		return fmt.Errorf("failed to parse image: %w", err)
	}
	flat := container.FlatImage(buf, idx)
	desc := container.DetectFromImage(flat, idx)

	v, err := fat12.Open(flat, desc)
	if err != nil {
		return fmt.Errorf("failed to open filesystem: %w", err)
	}

	var entries []fat12.DeletedEntry
	for _, e := range v.ListDeleted() {
		if opts.OnlyRecoverable && !e.Recoverable {
			continue
		}
		entries = append(entries, e)
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No deleted entries found")
		return nil
	}
	for _, e := range entries {
		status := "recoverable"
		if !e.Recoverable {
			status = "not recoverable"
		}
		fmt.Printf("%-40s %10d bytes  %s (%s)\n", e.Path, e.Size, status, e.Reason)
	}
	return nil
}
