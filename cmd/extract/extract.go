// file: cmd/extract/extract.go

package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

// ExtractOptions configures the file extraction operation.
type ExtractOptions struct {
	OutputDir string // Directory to extract files to
	Overwrite bool   // Allow overwriting existing files
	Quiet     bool   // Suppress non-error output
}

// DefaultExtractOptions returns default options for Extract.
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{OutputDir: "", Overwrite: false, Quiet: false}
}

func openVolume(imagePath string) (*fat12.Volume, error) {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("image does not exist: %w", err)
	}
	buf, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	idx, err := container.Load(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image: %w", err)
	}
	flat := container.FlatImage(buf, idx)
	desc := container.DetectFromImage(flat, idx)
	return fat12.Open(flat, desc)
}

// Extract copies one file from the disk image's FAT12 filesystem,
// identified by its fully qualified path, to the host filesystem.
func Extract(imagePath, fatPath string, opts *ExtractOptions) error {
	if opts == nil {
		opts = DefaultExtractOptions()
	}

	v, err := openVolume(imagePath)
	if err != nil {
		return err
	}

	var found *fat12.DirEntry
	for _, e := range v.Walk() {
		if e.Path == fatPath {
			e := e
			found = &e
			break
		}
	}
	if found == nil {
		return fmt.Errorf("file not found: %s", fatPath)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	outPath := filepath.Base(found.Path)
	if opts.OutputDir != "" {
		outPath = filepath.Join(opts.OutputDir, outPath)
	}

	if !opts.Overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("output file already exists: %s (use overwrite to replace)", outPath)
		}
	}

	data, err := v.ReadFile(*found)
	if err != nil {
		return fmt.Errorf("failed to extract file: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("failed to extract file: %w", err)
	}

	if !opts.Quiet {
		fmt.Printf("Extracted %s to %s\n", found.Path, outPath)
	}
	return nil
}

// ExtractAll extracts every live file from the disk image.
func ExtractAll(imagePath string, opts *ExtractOptions) error {
	if opts == nil {
		opts = DefaultExtractOptions()
	}

	v, err := openVolume(imagePath)
	if err != nil {
		return err
	}

	count := 0
	for _, e := range v.Walk() {
		if e.IsDir || e.IsVolumeName {
			continue
		}
		if err := Extract(imagePath, e.Path, opts); err != nil {
			return fmt.Errorf("failed to extract %s: %w", e.Path, err)
		}
		count++
	}

	if !opts.Quiet {
		fmt.Printf("Extracted %d files from disk image\n", count)
	}
	return nil
}
