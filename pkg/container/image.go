// file: pkg/container/image.go

package container

import (
	"bytes"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Format identifies which of the two related container variants an
// image was parsed from.
type Format int

const (
	FormatUnknown Format = iota
	FormatDSK
	FormatEDSK
)

func (f Format) String() string {
	switch f {
	case FormatDSK:
		return "DSK"
	case FormatEDSK:
		return "EDSK"
	default:
		return "Unknown"
	}
}

const (
	headerSize       = 256
	trackHeaderSize  = 256
	edskSignaturePfx = "EXTENDED CPC DSK File"
	dskSignaturePfx1 = "MV - CPC"
	dskSignaturePfx2 = "MV - CPCEMU"
)

// ImageIndex is the parsed representation of a DSK/EDSK container: its
// header fields plus the ordered track index built by Load.
type ImageIndex struct {
	Format  Format
	Creator string
	Tracks  int
	Sides   int
	Entries []TrackEntry
}

// Track looks up the TrackEntry for a given physical track and side.
// It returns false when the coordinates are outside the image's
// declared geometry.
func (idx *ImageIndex) Track(track, side int) (TrackEntry, bool) {
	if track < 0 || track >= idx.Tracks || side < 0 || side >= idx.Sides {
		return TrackEntry{}, false
	}
	i := track*idx.Sides + side
	if i < 0 || i >= len(idx.Entries) {
		return TrackEntry{}, false
	}
	return idx.Entries[i], true
}

// Load parses a raw DSK/EDSK buffer into an ImageIndex. It performs
// the header decode and track walk described for the container
// format; per-sector FDC anomalies are recorded on the sector rather
// than raised here.
func Load(buf []byte) (*ImageIndex, error) {
	if len(buf) == 0 {
		return nil, newErr(KindEmptyImage, "image has zero length")
	}
	if len(buf) < headerSize {
		return nil, wrapErr(KindOutOfBounds, "buffer shorter than disk header", nil)
	}

	sig := string(buf[0:34])
	var format Format
	switch {
	case strings.HasPrefix(sig, edskSignaturePfx):
		format = FormatEDSK
	case strings.HasPrefix(sig, dskSignaturePfx1), strings.HasPrefix(sig, dskSignaturePfx2):
		format = FormatDSK
	default:
		return nil, newErr(KindUnknownSignature, "header does not match DSK or EDSK")
	}

	creator := strings.TrimRight(string(bytes.Trim(buf[34:48], "\x00")), " ")
	tracks := int(buf[0x30])
	sides := int(buf[0x31])
	if tracks == 0 || sides == 0 {
		return nil, newErr(KindInvalidGeometry, "tracks or sides byte is zero")
	}

	slots := tracks * sides
	sizes := make([]int, slots)
	if format == FormatEDSK {
		for i := 0; i < slots; i++ {
			off := 0x34 + i
			if off >= headerSize {
				break
			}
			sizes[i] = int(buf[off]) * 256
		}
	} else {
		uniform := int(le16(buf, 0x32)) * 256
		for i := range sizes {
			sizes[i] = uniform
		}
	}

	idx := &ImageIndex{
		Format:  format,
		Creator: creator,
		Tracks:  tracks,
		Sides:   sides,
		Entries: make([]TrackEntry, slots),
	}

	cursor := headerSize
	for i := 0; i < slots; i++ {
		track := i / sides
		side := i % sides
		size := sizes[i]
		if size == 0 {
			idx.Entries[i] = TrackEntry{Track: track, Side: side, Missing: true}
			continue
		}
		if cursor+size > len(buf) {
			return nil, wrapErr(KindOutOfBounds, "track data extends past end of file", nil)
		}
		entry, err := parseTrack(buf, cursor, size, track, side)
		if err != nil {
			return nil, err
		}
		idx.Entries[i] = entry
		cursor += size
	}

	log.WithFields(log.Fields{
		"format": format.String(),
		"tracks": tracks,
		"sides":  sides,
	}).Debug("container: parsed image")

	return idx, nil
}

func le16(buf []byte, off int) uint16 {
	return uint16(buf[off]) | uint16(buf[off+1])<<8
}

func le32(buf []byte, off int) uint32 {
	return uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}
