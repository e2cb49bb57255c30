// file: pkg/container/flatimage.go

package container

import (
	"sort"

	"github.com/ha1tch/floppyarchive/internal"
)

// FlatImage projects the physical CHS sector layout described by idx
// into a contiguous logical byte stream, as required by filesystems
// that assume dense LBA addressing. Missing tracks are zero-filled so
// that offsets for later tracks stay aligned; geometry is taken from
// the first non-missing track and applied uniformly, per the open
// question recorded for heterogeneous images. Each sector's slot in
// the output is addressed through internal.LBA rather than derived
// from append order, so a track whose on-disk entry order or sector
// count departs from the reference geometry still lands at its
// correct logical position instead of shifting everything after it.
func FlatImage(buf []byte, idx *ImageIndex) []byte {
	sectorBytes, sectorsPerTrack := referenceGeometry(idx)
	if sectorBytes == 0 || sectorsPerTrack == 0 {
		return nil
	}

	trackSize := sectorBytes * sectorsPerTrack
	out := make([]byte, trackSize*len(idx.Entries))

	for _, te := range idx.Entries {
		if te.Missing {
			continue
		}
		sectors := make([]SectorEntry, len(te.Sectors))
		copy(sectors, te.Sectors)
		sort.Slice(sectors, func(i, j int) bool { return sectors[i].R < sectors[j].R })

		for ordinal, sec := range sectors {
			lba := internal.LBA(te.Track, te.Side, ordinal, sectorsPerTrack, idx.Sides)
			off := lba * sectorBytes
			if off < 0 || off+sec.Size > len(out) {
				continue
			}
			if sec.HasDataOffset && sec.DataOffset+sec.Size <= len(buf) {
				copy(out[off:off+sec.Size], buf[sec.DataOffset:sec.DataOffset+sec.Size])
			}
		}
	}
	return out
}

func referenceGeometry(idx *ImageIndex) (sectorBytes, sectorsPerTrack int) {
	for _, te := range idx.Entries {
		if te.Missing || len(te.Sectors) == 0 {
			continue
		}
		return te.Sectors[0].Size, te.SectorCount
	}
	return 0, 0
}
