// Package s7 implements a client for the Siemens S7 communication protocol
// over ISO-on-TCP (RFC 1006 TPKT framing + COTP connection-oriented transport).
package s7

import "fmt"

// Area identifies a PLC memory area on the wire. These are the exact S7ANY
// area codes; Counter and Timer intentionally share their byte value with
// the corresponding WordLength codes but are a distinct type.
type Area byte

const (
	AreaProcessInput  Area = 0x81
	AreaProcessOutput Area = 0x82
	AreaMerker        Area = 0x83
	AreaDataBlock     Area = 0x84
	AreaCounter       Area = 0x1C
	AreaTimer         Area = 0x1D
)

func (a Area) String() string {
	switch a {
	case AreaProcessInput:
		return "ProcessInput"
	case AreaProcessOutput:
		return "ProcessOutput"
	case AreaMerker:
		return "Merker"
	case AreaDataBlock:
		return "DataBlock"
	case AreaCounter:
		return "Counter"
	case AreaTimer:
		return "Timer"
	default:
		return fmt.Sprintf("Area(0x%02X)", byte(a))
	}
}

// WordLength identifies the element type of a read/write request. It shares
// wire values with Area for Counter/Timer but must never be conflated with it.
type WordLength byte

const (
	WLBit     WordLength = 0x01
	WLByte    WordLength = 0x02
	WLChar    WordLength = 0x03
	WLWord    WordLength = 0x04
	WLInt     WordLength = 0x05
	WLDWord   WordLength = 0x06
	WLDInt    WordLength = 0x07
	WLReal    WordLength = 0x08
	WLCounter WordLength = 0x1C
	WLTimer   WordLength = 0x1D
)

func (w WordLength) String() string {
	switch w {
	case WLBit:
		return "Bit"
	case WLByte:
		return "Byte"
	case WLChar:
		return "Char"
	case WLWord:
		return "Word"
	case WLInt:
		return "Int"
	case WLDWord:
		return "DWord"
	case WLDInt:
		return "DInt"
	case WLReal:
		return "Real"
	case WLCounter:
		return "Counter"
	case WLTimer:
		return "Timer"
	default:
		return fmt.Sprintf("WordLength(0x%02X)", byte(w))
	}
}

// dataSizeByte returns the per-element byte size for a WordLength, or 0 if
// the code is unknown.
func dataSizeByte(w WordLength) int {
	switch w {
	case WLBit, WLByte, WLChar:
		return 1
	case WLWord, WLInt, WLCounter, WLTimer:
		return 2
	case WLDWord, WLDInt, WLReal:
		return 4
	default:
		return 0
	}
}

// TransportSize is the result-framing code carried in multi-item responses
// and single-item write requests.
type TransportSize byte

const (
	TSBit   TransportSize = 3
	TSByte  TransportSize = 4
	TSInt   TransportSize = 5
	TSReal  TransportSize = 7
	TSOctet TransportSize = 9
)

// CpuStatus is the run state reported by plcStatus.
type CpuStatus byte

const (
	CpuUnknown    CpuStatus = 0
	CpuStopByUser CpuStatus = 3
	CpuStop       CpuStatus = 4
	CpuRun        CpuStatus = 8
)

func (s CpuStatus) String() string {
	switch s {
	case CpuUnknown:
		return "Unknown"
	case CpuStopByUser:
		return "StopByUser"
	case CpuStop:
		return "Stop"
	case CpuRun:
		return "Run"
	default:
		return fmt.Sprintf("CpuStatus(%d)", byte(s))
	}
}

// cpuStatusFromByte maps a wire byte to a CpuStatus. It is total on
// {0,3,4,8} and fails on any other value.
func cpuStatusFromByte(b byte) (CpuStatus, error) {
	switch CpuStatus(b) {
	case CpuUnknown, CpuStopByUser, CpuStop, CpuRun:
		return CpuStatus(b), nil
	default:
		return 0, &Error{Kind: KindInvalidCpuStatus, Message: fmt.Sprintf("unmapped cpu status byte 0x%02X", b)}
	}
}

// BlockType is the block-kind code used when requesting block info (a
// request-side key, distinct from SubBlockType which is the response-side
// code the PLC echoes back).
type BlockType byte

const (
	BlockTypeOB  BlockType = 0x38
	BlockTypeDB  BlockType = 0x41
	BlockTypeSDB BlockType = 0x42
	BlockTypeFC  BlockType = 0x43
	BlockTypeSFC BlockType = 0x44
	BlockTypeFB  BlockType = 0x45
	BlockTypeSFB BlockType = 0x46
)

// SubBlockType is the block-kind code the PLC reports in getAgBlockInfo
// responses.
type SubBlockType byte

const (
	SubBlockOB  SubBlockType = 0x08
	SubBlockDB  SubBlockType = 0x0A
	SubBlockSDB SubBlockType = 0x0B
	SubBlockFC  SubBlockType = 0x0C
	SubBlockSFC SubBlockType = 0x0D
	SubBlockFB  SubBlockType = 0x0E
	SubBlockSFB SubBlockType = 0x0F
)

func subBlockTypeFromByte(b byte) (SubBlockType, error) {
	switch SubBlockType(b) {
	case SubBlockOB, SubBlockDB, SubBlockSDB, SubBlockFC, SubBlockSFC, SubBlockFB, SubBlockSFB:
		return SubBlockType(b), nil
	default:
		return 0, &Error{Kind: KindInvalidBlockType, Message: fmt.Sprintf("unmapped sub-block type byte 0x%02X", b)}
	}
}

// BlockLang is the source language a block was compiled from.
type BlockLang byte

const (
	BlockLangAWL   BlockLang = 1
	BlockLangKOP   BlockLang = 2
	BlockLangFUP   BlockLang = 3
	BlockLangSCL   BlockLang = 4
	BlockLangDB    BlockLang = 5
	BlockLangGRAPH BlockLang = 6
)

func blockLangFromByte(b byte) (BlockLang, error) {
	switch BlockLang(b) {
	case BlockLangAWL, BlockLangKOP, BlockLangFUP, BlockLangSCL, BlockLangDB, BlockLangGRAPH:
		return BlockLang(b), nil
	default:
		return 0, &Error{Kind: KindInvalidBlockType, Message: fmt.Sprintf("unmapped block language byte 0x%02X", b)}
	}
}

// DataItem is a single logical read/write request/response record.
type DataItem struct {
	Area       Area
	WordLength WordLength
	DBNumber   uint16
	Start      int
	Size       int
	Buffer     []byte
	Err        error
}

// BlockInfo is the decoded response of getAgBlockInfo.
type BlockInfo struct {
	SubType        SubBlockType
	Number         uint16
	Lang           BlockLang
	Flags          byte
	MC7Size        uint16
	LoadSize       int32
	LocalData      uint16
	SBBLength      uint16
	Version        byte // BCD-encoded, e.g. 0x12 == "1.2"
	CodeDate       civilDate
	InterfaceDate  civilDate
	Author         string
	Family         string
	Header         string
}

// CpuInfo is the decoded response of cpuInfo (SZL 0x001C/0).
type CpuInfo struct {
	ModuleTypeName string
	SerialNumber   string
	ASName         string
	Copyright      string
	ModuleName     string
}

// CpInfo is the decoded response of cpInfo (SZL 0x0131/0).
type CpInfo struct {
	MaxPduLength uint16
	MaxConnections uint16
	MaxMpiRate     uint16
	MaxBusRate     uint16
}

// szlHeader is the accumulated header of a multi-part SZL read.
type szlHeader struct {
	LengthHeader      uint16
	NumberOfDataRecord uint16
}

// szl is the accumulated result of a multi-part SZL read.
type szl struct {
	Header szlHeader
	Data   []byte
}
