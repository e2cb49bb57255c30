// file: cmd/sector/sector.go

package sector

import (
	"fmt"
	"os"

	"github.com/ha1tch/floppyarchive/pkg/container"
)

// SectorOptions configures a single-sector hex dump.
type SectorOptions struct {
	Track int
	Side  int
	R     byte
}

// Dump prints a hex dump of one sector addressed by CHR.
func Dump(imagePath string, opts SectorOptions) error {
	buf, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	idx, err := container.Load(buf)
	if err != nil {
		return fmt.Errorf("failed to parse image: %w", err)
	}

	data, ok := idx.ReadSector(buf, opts.Track, opts.Side, opts.R)
	if !ok {
		return fmt.Errorf("sector track=%d side=%d r=%d not found or unreadable", opts.Track, opts.Side, opts.R)
	}

	for _, line := range container.HexDump(data) {
		fmt.Printf("%04X: %s %s\n", line.Offset, line.Hex, line.ASCII)
	}
	return nil
}
