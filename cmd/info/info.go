// file: cmd/info/info.go

package info

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ha1tch/floppyarchive/pkg/container"
)

// ImageInfo is the structured summary printed by Info.
type ImageInfo struct {
	Path       string    `json:"path"`
	Format     string    `json:"format"`
	Creator    string    `json:"creator"`
	Tracks     int       `json:"tracks"`
	Sides      int       `json:"sides"`
	Filesystem string    `json:"filesystem"`
	Modified   time.Time `json:"modified_time,omitempty"`
	Anomalies  []string  `json:"sector_anomalies,omitempty"`
}

// InfoOptions configures the information display.
type InfoOptions struct {
	JSON    bool // Output in JSON format
	Verbose bool // Include per-sector anomalies
}

// DefaultInfoOptions returns default options for Info.
func DefaultInfoOptions() *InfoOptions {
	return &InfoOptions{JSON: false, Verbose: false}
}

// Info prints a summary of one disk image.
func Info(imagePath string, opts *InfoOptions) error {
	if opts == nil {
		opts = DefaultInfoOptions()
	}

	stat, err := os.Stat(imagePath)
	if err != nil {
		return fmt.Errorf("image does not exist: %w", err)
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

	info := &ImageInfo{
		Path:       imagePath,
		Format:     idx.Format.String(),
		Creator:    idx.Creator,
		Tracks:     idx.Tracks,
		Sides:      idx.Sides,
		Filesystem: desc.Kind.String(),
		Modified:   stat.ModTime(),
	}

	if opts.Verbose {
		for _, te := range idx.Entries {
			for _, sec := range te.Sectors {
				if sec.HasError() {
					info.Anomalies = append(info.Anomalies, fmt.Sprintf(
						"track %d side %d sector R=%d: %v", te.Track, te.Side, sec.R, sec.ErrorFlags()))
				}
				if sec.Truncated {
					info.Anomalies = append(info.Anomalies, fmt.Sprintf(
						"track %d side %d sector R=%d: truncated", te.Track, te.Side, sec.R))
				}
			}
		}
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}
	return printText(info)
}

func printText(info *ImageInfo) error {
	fmt.Printf("Image:      %s\n", info.Path)
	fmt.Printf("Format:     %s\n", info.Format)
	fmt.Printf("Creator:    %s\n", info.Creator)
	fmt.Printf("Tracks:     %d\n", info.Tracks)
	fmt.Printf("Sides:      %d\n", info.Sides)
	fmt.Printf("Filesystem: %s\n", info.Filesystem)
	if !info.Modified.IsZero() {
		fmt.Printf("Modified:   %s\n", info.Modified.Format(time.RFC1123))
	}
	if len(info.Anomalies) > 0 {
		fmt.Printf("\nSector anomalies:\n")
		for _, a := range info.Anomalies {
			fmt.Printf("- %s\n", a)
		}
	}
	return nil
}
