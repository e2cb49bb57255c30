// file: pkg/fat12/volume_test.go

package fat12

import (
	"testing"

	"github.com/ha1tch/floppyarchive/pkg/container"
)

// TestOpenRejectsOverrunningRootDirectory builds a BPB whose declared
// root directory range runs past the end of a short flat image, as a
// damaged EDSK/DSK capture could produce, and checks Open fails
// cleanly instead of a later Walk/ListDeleted call panicking on a
// slice-bounds-out-of-range.
func TestOpenRejectsOverrunningRootDirectory(t *testing.T) {
	const bytesPerSector = 512
	bpb := container.FatBPB{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: 2,
		ReservedSectors:   1,
		FATCount:          2,
		RootEntries:       512, // declares a root dir far larger than the image below
		TotalSectors:      1440,
		SectorsPerFAT:     3,
	}
	desc := container.Descriptor{Kind: container.FSFat, Fat: bpb}

	// Only a few sectors' worth of bytes, nowhere near enough to hold
	// the reserved area, two FATs, and a 512-entry root directory.
	flat := make([]byte, 4*bytesPerSector)

	v, err := Open(flat, desc)
	if err == nil {
		t.Fatal("expected Open to reject an overrunning root directory range")
	}
	if v != nil {
		t.Fatal("expected a nil Volume on error")
	}
	ferr, ok := err.(*Error)
	if !ok || ferr.Kind != KindInvalidGeometry {
		t.Errorf("expected KindInvalidGeometry, got %v", err)
	}
}
