// file: pkg/container/detect.go

package container

// FSKind tags the coarse filesystem variant found on a flattened
// image. Unlike filesystem.FileSystemType in broader-purpose libraries,
// this is deliberately a two-way split plus Unknown: only FAT is
// parsed further here.
type FSKind int

const (
	FSUnknown FSKind = iota
	FSFat
	FSCpc
)

func (k FSKind) String() string {
	switch k {
	case FSFat:
		return "FAT"
	case FSCpc:
		return "CPC"
	default:
		return "Unknown"
	}
}

// Descriptor is the tagged-variant filesystem descriptor: exactly one
// of its non-zero-value sub-structs is meaningful, selected by Kind.
type Descriptor struct {
	Kind FSKind
	Fat  FatBPB
	Cpc  CpcNote
}

// FatBPB holds the decoded BIOS Parameter Block fields used by the
// FAT12 engine.
type FatBPB struct {
	OEM               string
	BytesPerSector    int
	SectorsPerCluster int
	ReservedSectors   int
	FATCount          int
	RootEntries       int
	TotalSectors      int
	MediaDescriptor   byte
	SectorsPerFAT     int
	SectorsPerTrack   int
	Heads             int
	VolumeLabel       string
	FSType            string
}

// CpcNote is the minimal identification-only payload recorded when a
// CPC/CP-M volume is recognized without being parsed further.
type CpcNote struct {
	Note string
}

// Detect inspects the first sector of track 0 side 0 within a
// flattened image and classifies the filesystem it finds there,
// per the Filesystem Detector's boot-sector heuristic.
func Detect(flat []byte) Descriptor {
	if len(flat) < 62 {
		return Descriptor{Kind: FSUnknown}
	}
	if flat[0] == 0xEB || flat[0] == 0xE9 {
		return Descriptor{Kind: FSFat, Fat: decodeBPB(flat)}
	}
	return Descriptor{Kind: FSUnknown}
}

// DetectFromImage additionally consults raw sector R identifiers on
// track 0 side 0 (a flattened image alone can't distinguish a CPC
// volume, since CPC sector IDs live outside the 0..sectorCount range
// a flat LBA view assumes).
func DetectFromImage(flat []byte, idx *ImageIndex) Descriptor {
	d := Detect(flat)
	if d.Kind != FSUnknown {
		return d
	}
	te, ok := idx.Track(0, 0)
	if !ok || te.Missing {
		return d
	}
	for _, sec := range te.Sectors {
		if sec.R >= 0xC1 && sec.R <= 0xC9 {
			return Descriptor{Kind: FSCpc, Cpc: CpcNote{Note: "CP/M sector numbering detected on track 0"}}
		}
	}
	return d
}

func decodeBPB(b []byte) FatBPB {
	trim := func(s string) string {
		n := len(s)
		for n > 0 && (s[n-1] == ' ' || s[n-1] == 0) {
			n--
		}
		return s[:n]
	}

	total16 := int(le16(b, 19))
	total := total16
	if total == 0 && len(b) >= 36 {
		total = int(le32(b, 32))
	}

	bpb := FatBPB{
		OEM:               trim(string(b[3:11])),
		BytesPerSector:    int(le16(b, 11)),
		SectorsPerCluster: int(b[13]),
		ReservedSectors:   int(le16(b, 14)),
		FATCount:          int(b[16]),
		RootEntries:       int(le16(b, 17)),
		TotalSectors:      total,
		MediaDescriptor:   b[21],
		SectorsPerFAT:     int(le16(b, 22)),
		SectorsPerTrack:   int(le16(b, 24)),
		Heads:             int(le16(b, 26)),
	}
	if len(b) >= 62 {
		bpb.VolumeLabel = trim(string(b[43:54]))
		bpb.FSType = trim(string(b[54:62]))
	}
	return bpb
}
