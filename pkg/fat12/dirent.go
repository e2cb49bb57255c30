// file: pkg/fat12/dirent.go

package fat12

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DirEntry is one logical directory entry, with its VFAT long name
// reassembled when present.
type DirEntry struct {
	Name         string
	ShortName    string
	LongName     string
	Attr         byte
	IsDir        bool
	IsHidden     bool
	IsSystem     bool
	IsReadOnly   bool
	IsVolumeName bool
	Size         int
	Cluster      int
	ModTime      time.Time
	Path         string
}

// DeletedEntry is a tombstoned directory record plus the undelete
// engine's recoverability verdict.
type DeletedEntry struct {
	DirEntry
	IsDeleted   bool
	Recoverable bool
	Reason      string
}

const (
	attrReadOnly  = 0x01
	attrHidden    = 0x02
	attrSystem    = 0x04
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrLFN       = 0x0F
)

var utf16leDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

func decodeUTF16LE(units []uint16) string {
	raw := make([]byte, 0, len(units)*2)
	for _, u := range units {
		raw = append(raw, byte(u), byte(u>>8))
	}
	out, _, err := transform.Bytes(utf16leDecoder, raw)
	if err != nil {
		return ""
	}
	return string(out)
}

// lfnFragment extracts the UTF-16LE code units from one 32-byte VFAT
// long-name record, across the three disjoint ranges the format
// scatters characters over, stopping at a terminator or padding unit.
func lfnFragment(rec []byte) []uint16 {
	var units []uint16
	readRange := func(lo, hi int) {
		for o := lo; o < hi; o += 2 {
			u := uint16(rec[o]) | uint16(rec[o+1])<<8
			if u == 0x0000 || u == 0xFFFF {
				return
			}
			units = append(units, u)
		}
	}
	readRange(1, 11)
	readRange(14, 26)
	readRange(28, 32)
	return units
}

func decodeDate(date, t uint16) time.Time {
	year := int((date>>9)&0x7F) + 1980
	month := int((date >> 5) & 0x0F)
	day := int(date & 0x1F)
	hour := int((t >> 11) & 0x1F)
	minute := int((t >> 5) & 0x3F)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func shortName(rec []byte) string {
	name := strings.TrimRight(string(rec[0:8]), " ")
	ext := strings.TrimRight(string(rec[8:11]), " ")
	if ext != "" {
		return name + "." + ext
	}
	return name
}

// lfnAccumulator reassembles VFAT long-name fragments into a single
// string, keyed by sequence number as the directory scan encounters
// them in arbitrary (usually descending) order.
type lfnAccumulator struct {
	slots map[int][]uint16
	max   int
}

func newLFNAccumulator() *lfnAccumulator {
	return &lfnAccumulator{slots: make(map[int][]uint16)}
}

func (a *lfnAccumulator) add(rec []byte) {
	first := rec[0]
	seq := int(first & 0x3F)
	if first&0x40 != 0 {
		a.reset()
	}
	a.slots[seq] = lfnFragment(rec)
	if seq > a.max {
		a.max = seq
	}
}

func (a *lfnAccumulator) reset() {
	a.slots = make(map[int][]uint16)
	a.max = 0
}

func (a *lfnAccumulator) resolve() string {
	if len(a.slots) == 0 {
		return ""
	}
	var units []uint16
	for seq := 1; seq <= a.max; seq++ {
		units = append(units, a.slots[seq]...)
	}
	a.reset()
	return decodeUTF16LE(units)
}

// parseDirectoryBuffer scans a buffer of 32-byte directory records
// and returns the live (non-deleted) entries it finds, in on-disk
// order. "." and ".." entries are returned like any other record;
// callers that walk a tree filter them.
func parseDirectoryBuffer(buf []byte) []DirEntry {
	var entries []DirEntry
	acc := newLFNAccumulator()

	for off := 0; off+32 <= len(buf); off += 32 {
		rec := buf[off : off+32]
		if rec[0] == 0x00 {
			break
		}
		if rec[0] == 0xE5 {
			acc.reset()
			continue
		}
		attr := rec[11]
		if attr == attrLFN {
			acc.add(rec)
			continue
		}

		long := acc.resolve()
		e := DirEntry{
			ShortName:    shortName(rec),
			Attr:         attr,
			IsReadOnly:   attr&attrReadOnly != 0,
			IsHidden:     attr&attrHidden != 0,
			IsSystem:     attr&attrSystem != 0,
			IsDir:        attr&attrDirectory != 0,
			IsVolumeName: attr&attrVolumeID != 0,
			Cluster:      int(uint16(rec[26]) | uint16(rec[27])<<8),
			Size:         int(le32(rec, 28)),
			ModTime:      decodeDate(uint16(rec[24])|uint16(rec[25])<<8, uint16(rec[22])|uint16(rec[23])<<8),
		}
		if long != "" {
			e.LongName = long
			e.Name = long
		} else {
			e.Name = e.ShortName
		}
		entries = append(entries, e)
	}
	return entries
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// parseDeletedBuffer scans the same record layout for tombstoned
// entries: first byte 0xE5, attribute not LFN, excluding directories
// and volume labels, whose first filename character has been
// overwritten and is reported as "?".
func parseDeletedBuffer(buf []byte) []DeletedEntry {
	var out []DeletedEntry
	for off := 0; off+32 <= len(buf); off += 32 {
		rec := buf[off : off+32]
		if rec[0] != 0xE5 {
			continue
		}
		attr := rec[11]
		if attr == attrLFN || attr&attrDirectory != 0 || attr&attrVolumeID != 0 {
			continue
		}
		cluster := int(uint16(rec[26]) | uint16(rec[27])<<8)
		size := int(le32(rec, 28))
		if cluster < 2 || size == 0 {
			continue
		}
		sn := "?" + strings.TrimRight(string(rec[1:8]), " ")
		ext := strings.TrimRight(string(rec[8:11]), " ")
		if ext != "" {
			sn = fmt.Sprintf("%s.%s", sn, ext)
		}
		e := DeletedEntry{
			DirEntry: DirEntry{
				Name:      sn,
				ShortName: sn,
				Attr:      attr,
				Cluster:   cluster,
				Size:      size,
				ModTime:   decodeDate(uint16(rec[24])|uint16(rec[25])<<8, uint16(rec[22])|uint16(rec[23])<<8),
			},
			IsDeleted: true,
		}
		out = append(out, e)
	}
	return out
}
