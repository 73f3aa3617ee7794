package s7

// Canonical request telegram templates. All are immutable constants;
// callers must copy before patching any mutable offset (the source this
// engine is modeled on mutates shared buffers in place, which is exactly
// the bug class this rule avoids: see DESIGN.md).
//
// TPKT framing is bytes 0-3 (version=3, reserved=0, total length u16 BE).
// COTP data header is bytes 4-6 (0x02 0xF0 0x80) for every telegram except
// the ISO connection request, which carries its own COTP CR header.

// isoConnectionRequestTelegram is the COTP connection request (CR). Mutable
// offsets: source TSAP at 16-17, destination TSAP at 20-21.
var isoConnectionRequestTelegram = [22]byte{
	3, 0, 0, 22, 17, 224, 0, 0, 0, 1, 0, 192, 1, 10, 193, 2, 1, 0, 194, 2, 1, 2,
}

// confirmConnection is the COTP PDU type byte for a Connect Confirm (CC).
const confirmConnection = 0xD0

// pduNegotiationTelegram requests a PDU size from the server. Mutable
// offset: requested PDU length (u16 BE) at bytes 23-24.
var pduNegotiationTelegram = [25]byte{
	3, 0, 0, 25, 2, 240, 128,
	50, 1, 0, 0, 4, 0, 0, 8, 0, 0,
	240, 0, 0, 1, 0, 1, 0, 30,
}

// pduNegotiationRequestedLenOffset is the byte offset of the requested PDU
// length field within pduNegotiationTelegram.
const pduNegotiationRequestedLenOffset = 23

// pduNegotiationResponseLenOffset is the byte offset of the negotiated PDU
// length field within the response frame.
const pduNegotiationResponseLenOffset = 25

// readWriteTemplate is the shared 35-byte skeleton for single-item read and
// write requests. Reads use only the first 31 bytes (no data-item header or
// payload); writes use the full 35 bytes plus an appended payload.
//
// Mutable offsets: word-length code at 22, element count (u16 BE) at 23-24,
// DB number (u16 BE) at 25-26, area code at 27, 24-bit address at 28-30.
// For writes additionally: function byte at 17 (0x05), data length (u16 BE)
// at 15-16, transport-size code at 32, data bit-length (u16 BE) at 33-34.
var readWriteTemplate = [35]byte{
	3, 0, 0, 31, 2, 240, 128,
	50, 1, 0, 0, 5, 0, 0, 14, 0, 0,
	4, 1, 18, 10, 16, byte(WLByte), 0, 0, 0, 0, byte(AreaDataBlock), 0, 0, 0,
	0, byte(TSByte), 0, 0,
}

const (
	readRequestSize     = 31
	writeTemplateSize   = 35
	readReplyHeaderSize = 18 // overhead subtracted when computing maxElements for reads
	writeHeaderOverhead = 35 // overhead subtracted when computing maxElements for writes
)

// Mutable offsets shared by readWriteTemplate.
const (
	rwOffsetFunction    = 17
	rwOffsetWordLength  = 22
	rwOffsetNumElements = 23
	rwOffsetDBNumber    = 25
	rwOffsetArea        = 27
	rwOffsetAddress     = 28
	rwOffsetDataLen     = 15
	rwOffsetTotalLen    = 2
	rwOffsetTS          = 32
	rwOffsetDataBitLen  = 33

	funcRead  = 0x04
	funcWrite = 0x05
)

// mrdHeaderTemplate is the 19-byte multi-read request header, followed by N
// 12-byte mrdItemTemplate records. Mutable offsets: total length at 2-3,
// parameter length at 13-14, item count at 18.
var mrdHeaderTemplate = [19]byte{
	3, 0, 0, 19, 2, 240, 128,
	50, 1, 0, 0, 0, 1, 0, 2, 0, 0,
	4, 0,
}

// mwrHeaderTemplate is the 19-byte multi-write request header. It carries a
// distinct baked-in PDU reference from mrdHeaderTemplate, matching the
// source this protocol engine is modeled on.
var mwrHeaderTemplate = [19]byte{
	3, 0, 0, 19, 2, 240, 128,
	50, 1, 0, 0, 5, 0, 0, 2, 0, 0,
	5, 0,
}

const (
	multiHeaderSize  = 19
	multiItemSize    = 12
	multiMaxVars     = 20
	multiOffsetLen   = 2
	multiOffsetParam = 13
	multiOffsetCount = 18
)

// mrdItemTemplate / mwrItemTemplate are the 12-byte per-item parameter
// records shared by multi-read and multi-write requests. Offsets: word
// length at 3, size (u16 BE) at 4-5, DB number (u16 BE) at 6-7, area at 8,
// 24-bit address at 9-11.
var mrdItemTemplate = [12]byte{18, 10, 16, byte(WLByte), 0, 0, 0, 0, byte(AreaDataBlock), 0, 0, 0}
var mwrItemTemplate = mrdItemTemplate

const (
	itemOffsetWordLength = 3
	itemOffsetSize       = 4
	itemOffsetDBNumber   = 6
	itemOffsetArea       = 8
	itemOffsetAddress    = 9
)

// Multi-read/write response layout.
const (
	multiRespOffsetGlobalError = 17
	multiRespOffsetCount       = 20
	multiRespItemsStart        = 21
	multiRespMinLen            = 22
)

// Control telegrams (cold start, warm start, stop). These carry a PI
// ("Program Invocation") service request; the function byte the PLC echoes
// back in the response (0x28 for start family, 0x29 for stop) is what the
// control state machine validates, per original_source/client.rs.
var coldStartTelegram = [39]byte{
	3, 0, 0, 39, 2, 240, 128,
	50, 1, 0, 0, 15, 0, 0, 22, 0, 0, 40, 0,
	0, 0, 0, 0, 0, 253, 0, 2, 67, 32, 9,
	'P', '_', 'P', 'R', 'O', 'G', 'R', 'A', 'M',
}

var warmStartTelegram = [37]byte{
	3, 0, 0, 37, 2, 240, 128,
	50, 1, 0, 0, 12, 0, 0, 20, 0, 0, 40, 0,
	0, 0, 0, 0, 0, 253, 0, 0, 9,
	'P', '_', 'P', 'R', 'O', 'G', 'R', 'A', 'M',
}

var stopTelegram = [33]byte{
	3, 0, 0, 33, 2, 240, 128,
	50, 1, 0, 0, 14, 0, 0, 16, 0, 0, 41, 0,
	0, 0, 0, 0, 9,
	'P', '_', 'P', 'R', 'O', 'G', 'R', 'A', 'M',
}

const (
	pduStart          = 0x28
	pduStop           = 0x29
	pduAlreadyStarted = 0x02
	pduAlreadyStopped = 0x07
)

// Control response offsets.
const (
	controlRespOffsetAlready = 18
	controlRespOffsetCode    = 19
	controlMinRespLen        = 19
)

// plcStatusTelegram requests the CPU run state (a SZL-shaped userdata
// request, distinct from the start/stop PI service calls).
var plcStatusTelegram = [33]byte{
	3, 0, 0, 33, 2, 240, 128,
	50, 7, 0, 0, 44, 0, 0, 8, 0,
	8, 0, 1, 18, 4, 17, 68, 1, 0,
	255, 9, 0, 4, 4, 36, 0, 0,
}

const (
	plcStatusMinRespLen   = 45
	plcStatusOffsetError  = 27
	plcStatusOffsetStatus = 44
)

// szlFirstTelegram requests the first (or only) part of a System Status
// List record. Mutable offsets: sequence-out (u16 BE) at 11-12, SZL ID (u16
// BE) at 29-30, SZL index (u16 BE) at 31-32.
var szlFirstTelegram = [33]byte{
	3, 0, 0, 33, 2, 240, 128,
	50, 7, 0, 0, 5, 0, 0, 8, 0,
	8, 0, 1, 18, 4, 17, 68, 1, 0,
	255, 9, 0, 4, 0, 0, 0, 0,
}

// szlNextTelegram requests a continuation part of a multi-part SZL read.
// Mutable offsets: sequence-in echo at byte 24, SZL index (u16 BE) at
// 31-32.
var szlNextTelegram = [33]byte{
	3, 0, 0, 33, 2, 240, 128,
	50, 7, 0, 0, 6, 0, 0, 12, 0,
	4, 0, 1, 18, 8, 18, 68, 1, 1,
	0, 0, 0, 0, 10, 0, 0, 0,
}

const (
	szlOffsetSeqOut     = 11
	szlOffsetID         = 29
	szlOffsetIndex      = 31
	szlOffsetSeqEcho    = 24
	szlMinFirstRespLen  = 42
	szlRespOffsetError  = 27
	szlRespOffsetOK     = 29
	szlRespOffsetSeqIn  = 24
	szlRespOffsetDone   = 26
	szlRespOffsetHeader = 37 // lengthHeader (u16 BE) at 37-38, numberOfDataRecord (u16 BE) at 39-40
	szlRespDataSizeOff  = 31 // u16 BE total data param size; subtract 8 on first part only
	szlRespDataStart    = 41
)

// blockInfoTelegram requests metadata for a single block. Mutable offsets:
// block type at 30, 5 ASCII block-number digits at 31-35.
var blockInfoTelegram = [37]byte{
	3, 0, 0, 37, 2, 240, 128,
	50, 7, 0, 0, 5, 0, 0, 8, 0,
	12, 0, 1, 18, 4, 17, 67, 3, 0,
	255, 9, 0, 8, 48, 65,
	48, 48, 48, 48, 48, 65,
}

const (
	blockInfoOffsetType       = 30
	blockInfoOffsetNumber     = 31
	blockInfoMinRespLen       = 33
	blockInfoRespOffsetError  = 27
	blockInfoRespOffsetFlags  = 42
	blockInfoRespOffsetLang   = 43
	blockInfoRespOffsetSub    = 44
	blockInfoRespOffsetNumber = 45
	blockInfoRespOffsetLoad   = 47
	blockInfoRespOffsetCode   = 59
	blockInfoRespOffsetIface  = 65
	blockInfoRespOffsetSBB    = 67
	blockInfoRespOffsetLocal  = 71
	blockInfoRespOffsetMC7    = 73
	blockInfoRespOffsetAuthor = 75
	blockInfoRespOffsetFamily = 83
	blockInfoRespOffsetHeader = 91
	blockInfoRespOffsetVer    = 99
)

// blockListTelegram requests the block-type population counts.
var blockListTelegram = [29]byte{
	3, 0, 0, 29, 2, 240, 128,
	50, 7, 0, 0, 24, 0, 0, 8, 0,
	4, 0, 1, 18, 4, 17, 67, 1,
	0, 10, 0, 0, 0,
}

const (
	blockListMinRespLen      = 61
	blockListRespOffsetOK    = 29
	blockListRespOffsetError = 27
	blockListRespOffsetOB    = 35
	blockListRespOffsetFB    = 39
	blockListRespOffsetFC    = 43
	blockListRespOffsetDB    = 47
	blockListRespOffsetSDB   = 51
	blockListRespOffsetSFC   = 55
	blockListRespOffsetSFB   = 59
)

// SZL IDs for the two introspection queries the engine exposes.
const (
	szlIDCpuIdentification = 0x001C
	szlIDCommParameters    = 0x0131
)

const (
	cpuInfoMinDataLen = 205
	cpInfoMinDataLen  = 12
)
