// file: pkg/fat12/table_test.go

package fat12

import (
	"testing"

	"github.com/ha1tch/floppyarchive/pkg/container"
)

// build720KFloppy constructs a minimal, self-consistent 720KB FAT12
// image: BPB at sector 0, a 3-sector FAT, a 7-sector root directory,
// and a data area starting right after.
func build720KFloppy() ([]byte, container.Descriptor) {
	const (
		bytesPerSector    = 512
		sectorsPerCluster = 2
		reservedSectors   = 1
		fatCount          = 2
		rootEntries       = 112
		sectorsPerFAT     = 3
		totalSectors      = 1440
	)
	buf := make([]byte, totalSectors*bytesPerSector)
	buf[0] = 0xEB
	putLE16(buf, 11, bytesPerSector)
	buf[13] = sectorsPerCluster
	putLE16(buf, 14, reservedSectors)
	buf[16] = fatCount
	putLE16(buf, 17, rootEntries)
	putLE16(buf, 19, totalSectors)
	buf[21] = 0xF0
	putLE16(buf, 22, sectorsPerFAT)

	bpb := container.FatBPB{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		ReservedSectors:   reservedSectors,
		FATCount:          fatCount,
		RootEntries:       rootEntries,
		TotalSectors:      totalSectors,
		SectorsPerFAT:     sectorsPerFAT,
	}
	desc := container.Descriptor{Kind: container.FSFat, Fat: bpb}
	return buf, desc
}

func putLE16(b []byte, off, v int) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}

func setFATEntry(buf []byte, fatStart, index, value int) {
	pos := fatStart + (3*index)/2
	word := int(buf[pos]) | int(buf[pos+1])<<8
	if index%2 == 0 {
		word = (word &^ 0x0FFF) | (value & 0x0FFF)
	} else {
		word = (word &^ 0xFFF0) | ((value & 0x0FFF) << 4)
	}
	buf[pos] = byte(word)
	buf[pos+1] = byte(word >> 8)
}

func TestOpenRejectsNonFAT(t *testing.T) {
	_, err := Open(nil, container.Descriptor{Kind: container.FSUnknown})
	if err == nil {
		t.Fatal("expected NotFatFilesystem error")
	}
}

func TestClusterChainTerminatesOnCycle(t *testing.T) {
	buf, desc := build720KFloppy()
	v, err := Open(buf, desc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Force a cycle: cluster 2 -> 3 -> 2.
	setFATEntry(buf, v.fatStart, 2, 3)
	setFATEntry(buf, v.fatStart, 3, 2)

	chain := v.clusterChain(2)
	if len(chain) > v.totalClusters {
		t.Fatalf("chain did not terminate: length %d", len(chain))
	}
}

func TestClusterChainEndOfChain(t *testing.T) {
	buf, desc := build720KFloppy()
	v, err := Open(buf, desc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	setFATEntry(buf, v.fatStart, 2, 3)
	setFATEntry(buf, v.fatStart, 3, 0xFFF)

	chain := v.clusterChain(2)
	want := []int{2, 3}
	if len(chain) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, chain)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d] = %d, want %d", i, chain[i], want[i])
		}
	}
}

func TestFreeRunLength(t *testing.T) {
	buf, desc := build720KFloppy()
	v, err := Open(buf, desc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// clusters 5,6,7 free; 8 allocated
	setFATEntry(buf, v.fatStart, 8, 0xFFF)
	run := v.freeRunLength(5)
	if run < 3 {
		t.Errorf("expected at least 3 free clusters from 5, got %d", run)
	}
}

func TestRecoverabilityScoring(t *testing.T) {
	buf, desc := build720KFloppy()
	v, err := Open(buf, desc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// size 3000 bytes, clusterBytes 1024 -> needs 3 clusters at cluster 5.
	setFATEntry(buf, v.fatStart, 8, 0xFFF) // mark 8 allocated so only 5,6,7 are free
	ok, reason := v.score(5, 3000)
	if !ok {
		t.Errorf("expected recoverable, got not recoverable: %s", reason)
	}

	setFATEntry(buf, v.fatStart, 6, 0xFFF) // reallocate middle cluster
	ok, _ = v.score(5, 3000)
	if ok {
		t.Errorf("expected not recoverable once cluster run is broken")
	}
}
