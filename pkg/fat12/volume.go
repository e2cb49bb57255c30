// file: pkg/fat12/volume.go

package fat12

import "github.com/ha1tch/floppyarchive/pkg/container"

// Volume binds a flattened disk image to the geometry decoded from
// its BIOS Parameter Block, precomputing the byte offsets every other
// operation in this package needs.
type Volume struct {
	flat []byte
	bpb  container.FatBPB

	fatStart      int
	rootStart     int
	rootByteCount int
	dataStart     int
	clusterBytes  int
	totalClusters int
}

// Open builds a Volume from a flattened image and a filesystem
// descriptor. It fails with NotFatFilesystem if the descriptor isn't
// tagged FAT.
func Open(flat []byte, desc container.Descriptor) (*Volume, error) {
	if desc.Kind != container.FSFat {
		return nil, newErr(KindNotFatFilesystem, "image does not carry a FAT boot sector")
	}
	bpb := desc.Fat
	if bpb.BytesPerSector <= 0 || bpb.SectorsPerCluster <= 0 {
		return nil, newErr(KindNotFatFilesystem, "degenerate cluster size in BPB")
	}

	v := &Volume{flat: flat, bpb: bpb}
	v.fatStart = bpb.ReservedSectors * bpb.BytesPerSector
	v.rootStart = (bpb.ReservedSectors + bpb.FATCount*bpb.SectorsPerFAT) * bpb.BytesPerSector
	v.rootByteCount = bpb.RootEntries * 32
	rootSectors := (v.rootByteCount + bpb.BytesPerSector - 1) / bpb.BytesPerSector
	v.dataStart = (bpb.ReservedSectors + bpb.FATCount*bpb.SectorsPerFAT + rootSectors) * bpb.BytesPerSector
	v.clusterBytes = bpb.BytesPerSector * bpb.SectorsPerCluster
	v.totalClusters = bpb.TotalSectors/bpb.SectorsPerCluster + 2

	if v.rootStart < 0 || v.rootByteCount < 0 || v.rootStart+v.rootByteCount > len(flat) {
		return nil, newErr(KindInvalidGeometry, "root directory range exceeds image size")
	}

	return v, nil
}

// BPB returns the decoded boot parameter block this volume was opened
// with.
func (v *Volume) BPB() container.FatBPB {
	return v.bpb
}
