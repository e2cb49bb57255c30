// file: pkg/container/hexdump.go

package container

import "fmt"

// HexLine is one formatted row of a hex dump: an offset, the hex
// column, and the printable-ASCII column.
type HexLine struct {
	Offset int
	Hex    string
	ASCII  string
}

// HexDump formats a sector's bytes 16 per line, in the canonical
// offset/hex/ascii layout used by every sector-inspecting tool in
// this pack.
func HexDump(data []byte) []HexLine {
	var lines []HexLine
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		hex := ""
		ascii := make([]byte, 0, 16)
		for i := 0; i < 16; i++ {
			if i < len(chunk) {
				hex += fmt.Sprintf("%02X ", chunk[i])
				c := chunk[i]
				if c >= 0x20 && c < 0x7F {
					ascii = append(ascii, c)
				} else {
					ascii = append(ascii, '.')
				}
			} else {
				hex += "   "
			}
		}
		lines = append(lines, HexLine{Offset: off, Hex: hex, ASCII: string(ascii)})
	}
	return lines
}
