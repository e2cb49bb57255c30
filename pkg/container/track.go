// file: pkg/container/track.go

package container

import log "github.com/sirupsen/logrus"

// TrackEntry describes one physical track on one side, as recorded in
// an ImageIndex. A Missing track carries no sectors and no offset.
type TrackEntry struct {
	Track          int
	Side           int
	Missing        bool
	Offset         int
	Size           int
	DataRate       byte
	RecordingMode  byte
	SectorSizeCode byte
	SectorCount    int
	Gap3           byte
	Filler         byte
	Sectors        []SectorEntry
}

// SectorEntry is one sector descriptor within a track, carrying its
// CHRN identity, FDC status bytes, and its placement within the image
// buffer.
type SectorEntry struct {
	Index        int
	C, H, R, N   byte
	ST1, ST2     byte
	Size         int
	ExpectedSize int
	DataOffset   int
	HasDataOffset bool
	Truncated    bool
}

// HasError reports whether either FDC status byte recorded a non-zero
// flag for this sector.
func (s SectorEntry) HasError() bool {
	return s.ST1 != 0 || s.ST2 != 0
}

// ErrorFlags decodes ST1/ST2 into a list of short descriptive tokens.
// Decoding is informational only: it never turns a sector read into a
// hard failure.
func (s SectorEntry) ErrorFlags() []string {
	var flags []string
	if s.ST1&0x80 != 0 {
		flags = append(flags, "end-of-cylinder")
	}
	if s.ST1&0x20 != 0 {
		flags = append(flags, "data-error-in-id")
	}
	if s.ST1&0x04 != 0 {
		flags = append(flags, "no-data")
	}
	if s.ST1&0x02 != 0 {
		flags = append(flags, "not-writable")
	}
	if s.ST1&0x01 != 0 {
		flags = append(flags, "missing-address-mark")
	}
	if s.ST2&0x40 != 0 {
		flags = append(flags, "control-mark")
	}
	if s.ST2&0x20 != 0 {
		flags = append(flags, "data-error-in-data")
	}
	if s.ST2&0x04 != 0 {
		flags = append(flags, "wrong-cylinder")
	}
	if s.ST2&0x02 != 0 {
		flags = append(flags, "bad-cylinder")
	}
	if s.ST2&0x01 != 0 {
		flags = append(flags, "missing-data-mark")
	}
	return flags
}

// parseTrack decodes a single track's 256-byte header and its sector
// descriptor table, then places each sector's data in declaration
// order, matching the Container Parser's track-walk algorithm.
func parseTrack(buf []byte, offset, size, track, side int) (TrackEntry, error) {
	if size < trackHeaderSize {
		return TrackEntry{}, newErr(KindTrackHeaderTooSmall, "declared track size smaller than header")
	}

	th := buf[offset : offset+trackHeaderSize]
	entry := TrackEntry{
		Track:          track,
		Side:           side,
		Offset:         offset,
		Size:           size,
		DataRate:       th[0x12],
		RecordingMode:  th[0x13],
		SectorSizeCode: th[0x14],
		SectorCount:    int(th[0x15]),
		Gap3:           th[0x16],
		Filler:         th[0x17],
	}

	entry.Sectors = make([]SectorEntry, entry.SectorCount)
	dataCursor := offset + trackHeaderSize
	trackEnd := offset + size
	truncatedFrom := -1

	for i := 0; i < entry.SectorCount; i++ {
		descOff := 0x18 + i*8
		if descOff+8 > len(th) {
			break
		}
		desc := th[descOff : descOff+8]
		sec := SectorEntry{
			Index: i,
			C:     desc[0],
			H:     desc[1],
			R:     desc[2],
			N:     desc[3],
			ST1:   desc[4],
			ST2:   desc[5],
		}
		sec.ExpectedSize = 128 << sec.N
		actual := int(le16(desc, 6))
		if actual != 0 {
			sec.Size = actual
		} else {
			sec.Size = sec.ExpectedSize
		}

		if truncatedFrom >= 0 {
			sec.Truncated = true
			entry.Sectors[i] = sec
			continue
		}

		if dataCursor+sec.Size > trackEnd {
			sec.Truncated = true
			truncatedFrom = i
			entry.Sectors[i] = sec
			log.WithFields(log.Fields{
				"track": track, "side": side, "sector": i,
			}).Debug("container: sector data crosses track boundary")
			continue
		}

		sec.DataOffset = dataCursor
		sec.HasDataOffset = true
		entry.Sectors[i] = sec
		dataCursor += sec.Size
	}

	return entry, nil
}

// ReadSector returns the raw bytes of the sector on the given track
// and side whose R field matches r, or false if the track is missing,
// the sector is absent, or its data could not be placed.
func (idx *ImageIndex) ReadSector(buf []byte, track, side int, r byte) ([]byte, bool) {
	te, ok := idx.Track(track, side)
	if !ok || te.Missing {
		return nil, false
	}
	for _, sec := range te.Sectors {
		if sec.R == r {
			if !sec.HasDataOffset {
				return nil, false
			}
			end := sec.DataOffset + sec.Size
			if end > len(buf) {
				return nil, false
			}
			return buf[sec.DataOffset:end], true
		}
	}
	return nil, false
}
