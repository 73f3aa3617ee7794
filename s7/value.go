package s7

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// This file collects small encode/decode helpers for the PLC's native word
// types. They operate on plain []byte slices rather than a tagged value
// type: callers already know the WordLength of the DataItem they built, so
// there is no need for a runtime type-dispatch wrapper around every read.

// DecodeBool extracts bit n (0-7) of b[0].
func DecodeBool(b []byte, bit int) (bool, error) {
	if len(b) < 1 {
		return false, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for BOOL"}
	}
	if bit < 0 || bit > 7 {
		return false, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("bit number %d out of range", bit)}
	}
	return b[0]&(1<<uint(bit)) != 0, nil
}

// EncodeBool returns a single byte with bit n set or cleared, the rest zero.
// Callers that need to set a single bit without disturbing its neighbors
// must read-modify-write the byte themselves.
func EncodeBool(bit int, v bool) (byte, error) {
	if bit < 0 || bit > 7 {
		return 0, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("bit number %d out of range", bit)}
	}
	if !v {
		return 0, nil
	}
	return 1 << uint(bit), nil
}

// DecodeWord reads an unsigned 16-bit word.
func DecodeWord(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for WORD"}
	}
	return binary.BigEndian.Uint16(b), nil
}

// EncodeWord serializes an unsigned 16-bit word.
func EncodeWord(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// DecodeInt reads a signed 16-bit integer.
func DecodeInt(b []byte) (int16, error) {
	if len(b) < 2 {
		return 0, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for INT"}
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// EncodeInt serializes a signed 16-bit integer.
func EncodeInt(v int16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

// DecodeDWord reads an unsigned 32-bit double word.
func DecodeDWord(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for DWORD"}
	}
	return binary.BigEndian.Uint32(b), nil
}

// EncodeDWord serializes an unsigned 32-bit double word.
func EncodeDWord(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// DecodeDInt reads a signed 32-bit integer.
func DecodeDInt(b []byte) (int32, error) {
	if len(b) < 4 {
		return 0, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for DINT"}
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// EncodeDInt serializes a signed 32-bit integer.
func EncodeDInt(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

// DecodeReal reads an IEEE-754 single-precision float (the PLC's REAL type).
func DecodeReal(b []byte) (float32, error) {
	if len(b) < 4 {
		return 0, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for REAL"}
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// EncodeReal serializes an IEEE-754 single-precision float.
func EncodeReal(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// fromBCD converts a single BCD-encoded byte to its decimal value.
func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0F) }

// DecodeDateAndTime parses the PLC's 8-byte DATE_AND_TIME wire format
// (BCD year/month/day/hour/minute/second, BCD milliseconds split across
// both digits of byte 6 and the high nibble of byte 7, weekday in byte 7's
// low nibble).
func DecodeDateAndTime(b []byte) (time.Time, error) {
	if len(b) < 8 {
		return time.Time{}, &Error{Kind: KindInvalidDataSize, Message: "insufficient data for DATE_AND_TIME"}
	}
	year := fromBCD(b[0])
	if year < 90 {
		year += 2000
	} else {
		year += 1900
	}
	month := fromBCD(b[1])
	day := fromBCD(b[2])
	hour := fromBCD(b[3])
	minute := fromBCD(b[4])
	second := fromBCD(b[5])
	msec := fromBCD(b[6])*10 + int(b[7]>>4)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, &Error{Kind: KindInvalidDataSize, Message: "malformed DATE_AND_TIME payload", Bytes: b[:8]}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, msec*int(time.Millisecond), time.UTC), nil
}
