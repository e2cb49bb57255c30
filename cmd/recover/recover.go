// file: cmd/recover/recover.go

package recover

import (
	"fmt"
	"os"

	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

// RecoverOptions configures a deleted-file recovery attempt.
type RecoverOptions struct {
	OutputDir string // Directory to write the recovered file to
	Overwrite bool   // Allow overwriting an existing output file
	Force     bool   // Attempt recovery even if judged not recoverable
}

// DefaultRecoverOptions returns default options for Recover.
func DefaultRecoverOptions() *RecoverOptions {
	return &RecoverOptions{OutputDir: "", Overwrite: false, Force: false}
}

// Recover reads back a deleted file's payload from contiguous free
// clusters and writes it to the host filesystem.
func Recover(imagePath, fatPath string, opts *RecoverOptions) error {
	if opts == nil {
		opts = DefaultRecoverOptions()
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

	var found *fat12.DeletedEntry
	for _, e := range v.ListDeleted() {
		if e.Path == fatPath {
			e := e
			found = &e
			break
		}
	}
	if found == nil {
		return fmt.Errorf("deleted entry not found: %s", fatPath)
	}
	if !found.Recoverable && !opts.Force {
		return fmt.Errorf("entry judged not recoverable (%s); use Force to attempt anyway", found.Reason)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	outPath := found.ShortName
	if opts.OutputDir != "" {
		outPath = opts.OutputDir + string(os.PathSeparator) + outPath
	}
	if !opts.Overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("output file already exists: %s", outPath)
		}
	}

	data, err := v.Recover(*found)
	if err != nil {
		return fmt.Errorf("failed to recover file: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write recovered file: %w", err)
	}
	fmt.Printf("Recovered %s (%d bytes) to %s\n", found.Path, len(data), outPath)
	return nil
}
