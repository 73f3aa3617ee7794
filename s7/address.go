package s7

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TagAddress is a parsed string address such as "DB1.DBW0" or "M0.0". It is
// a convenience layer over the raw (Area, WordLength, DBNumber, Start)
// tuple the engine operates on; it does not resolve STEP7 project symbols.
type TagAddress struct {
	Area       Area
	WordLength WordLength
	DBNumber   uint16
	Start      int
	BitNum     int // 0-7 for WLBit, -1 otherwise
}

var (
	reDB  = regexp.MustCompile(`^DB(\d+)\.DB([XBWD])(\d+)(?:\.(\d))?$`)
	reIQM = regexp.MustCompile(`^([IQM])([XBWD])?(\d+)(?:\.(\d))?$`)
	reTC  = regexp.MustCompile(`^([TC])(\d+)$`)
)

// ParseTagAddress parses an S7 address string.
//
// Supported forms:
//
//	DB1.DBX0.0   data block bit
//	DB1.DBB0     data block byte
//	DB1.DBW0     data block word
//	DB1.DBD0     data block double word
//	M0.0, MB0, MW0, MD0   Merker
//	I0.0, IB0, IW0, ID0   process-input image
//	Q0.0, QB0, QW0, QD0   process-output image
//	T5                    timer
//	C12                   counter
func ParseTagAddress(addr string) (*TagAddress, error) {
	addr = strings.ToUpper(strings.TrimSpace(addr))
	if addr == "" {
		return nil, &Error{Kind: KindInvalidInput, Message: "empty address"}
	}
	if m := reDB.FindStringSubmatch(addr); m != nil {
		return parseDBTagAddress(m)
	}
	if m := reIQM.FindStringSubmatch(addr); m != nil {
		return parseIQMTagAddress(m)
	}
	if m := reTC.FindStringSubmatch(addr); m != nil {
		return parseTCTagAddress(m)
	}
	return nil, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("invalid S7 address format: %s", addr)}
}

func parseDBTagAddress(m []string) (*TagAddress, error) {
	dbNum, _ := strconv.Atoi(m[1])
	start, _ := strconv.Atoi(m[3])
	a := &TagAddress{Area: AreaDataBlock, DBNumber: uint16(dbNum), Start: start, BitNum: -1}
	switch m[2] {
	case "X":
		if m[4] == "" {
			return nil, &Error{Kind: KindInvalidInput, Message: "DBX requires a bit number, e.g. DB1.DBX0.0"}
		}
		bit, _ := strconv.Atoi(m[4])
		if bit < 0 || bit > 7 {
			return nil, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("bit number must be 0-7, got %d", bit)}
		}
		a.WordLength = WLBit
		a.BitNum = bit
	case "B":
		a.WordLength = WLByte
	case "W":
		a.WordLength = WLWord
	case "D":
		a.WordLength = WLDWord
	default:
		return nil, &Error{Kind: KindInvalidInput, Message: "unknown DB type letter: " + m[2]}
	}
	return a, nil
}

func parseIQMTagAddress(m []string) (*TagAddress, error) {
	var area Area
	switch m[1] {
	case "I":
		area = AreaProcessInput
	case "Q":
		area = AreaProcessOutput
	case "M":
		area = AreaMerker
	}
	typeLetter := m[2]
	if typeLetter == "" {
		typeLetter = "X"
	}
	start, _ := strconv.Atoi(m[3])
	a := &TagAddress{Area: area, Start: start, BitNum: -1}
	switch typeLetter {
	case "X":
		bit := 0
		if m[4] != "" {
			bit, _ = strconv.Atoi(m[4])
			if bit < 0 || bit > 7 {
				return nil, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("bit number must be 0-7, got %d", bit)}
			}
		}
		a.WordLength = WLBit
		a.BitNum = bit
	case "B":
		a.WordLength = WLByte
	case "W":
		a.WordLength = WLWord
	case "D":
		a.WordLength = WLDWord
	default:
		return nil, &Error{Kind: KindInvalidInput, Message: "unknown type letter: " + typeLetter}
	}
	return a, nil
}

func parseTCTagAddress(m []string) (*TagAddress, error) {
	start, _ := strconv.Atoi(m[2])
	switch m[1] {
	case "T":
		return &TagAddress{Area: AreaTimer, WordLength: WLTimer, Start: start, BitNum: -1}, nil
	case "C":
		return &TagAddress{Area: AreaCounter, WordLength: WLCounter, Start: start, BitNum: -1}, nil
	default:
		return nil, &Error{Kind: KindInvalidInput, Message: "unreachable"}
	}
}

// DataItem converts the parsed address plus an element count into a
// DataItem ready for ReadMultiVars/WriteMultiVars, backed by buf. Bit
// addresses are sent unshifted, so a WLBit item carries the bit address
// Start*8+BitNum.
func (a *TagAddress) DataItem(count int, buf []byte) *DataItem {
	start := a.Start
	if a.WordLength == WLBit {
		start = a.Start*8 + a.BitNum
	}
	return &DataItem{
		Area:       a.Area,
		WordLength: a.WordLength,
		DBNumber:   a.DBNumber,
		Start:      start,
		Size:       count,
		Buffer:     buf,
	}
}
