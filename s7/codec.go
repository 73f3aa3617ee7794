package s7

import (
	"encoding/binary"
	"strings"
	"time"
)

// civilDate is a calendar date decoded from a 16-bit Siemens timestamp. The
// PLC stores block code/interface dates as a day count from a fixed epoch.
type civilDate struct {
	time.Time
}

// siemensEpoch is the documented base date for the 16-bit block-header
// timestamp fields.
var siemensEpoch = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// decodeSiemensDate converts a 16-bit day count into a civil date.
func decodeSiemensDate(days uint16) civilDate {
	return civilDate{siemensEpoch.AddDate(0, 0, int(days))}
}

// beUint16 reads a big-endian uint16 at offset.
func beUint16(b []byte, offset int) uint16 {
	return binary.BigEndian.Uint16(b[offset : offset+2])
}

// putBEUint16 writes a big-endian uint16 at offset.
func putBEUint16(b []byte, offset int, v uint16) {
	binary.BigEndian.PutUint16(b[offset:offset+2], v)
}

// beInt32 reads a big-endian int32 at offset.
func beInt32(b []byte, offset int) int32 {
	return int32(binary.BigEndian.Uint32(b[offset : offset+4]))
}

// put24BitAddress writes a 24-bit big-endian address at offset..offset+3.
func put24BitAddress(b []byte, offset int, addr uint32) {
	b[offset] = byte(addr >> 16)
	b[offset+1] = byte(addr >> 8)
	b[offset+2] = byte(addr)
}

// asciiField trims trailing NUL/space padding from a fixed-width ASCII
// field, matching the way block-header text fields are stored.
func asciiField(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

// blockNumberASCII encodes a block number as 5 ASCII decimal digits, NOT
// BCD, matching the wire format getAgBlockInfo requires.
func blockNumberASCII(n uint32) [5]byte {
	var out [5]byte
	for i := 4; i >= 0; i-- {
		out[i] = byte(n%10) + 0x30
		n /= 10
	}
	return out
}

// bcdVersionString formats a single BCD-encoded byte as "<hi>.<lo>", used
// for the BlockInfo.Version field.
func bcdVersionString(b byte) string {
	hi := b >> 4
	lo := b & 0x0F
	return string(rune('0'+hi)) + "." + string(rune('0'+lo))
}
