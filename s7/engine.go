package s7

import (
	"fmt"
	"sync"
)

// sender is the minimal contract the engine needs from a transport; it lets
// tests substitute a mock that feeds canned response bytes without opening
// a socket.
type sender interface {
	Send(request []byte) ([]byte, error)
	PDULength() uint16
}

// Client is the S7 protocol engine façade: it composes telegrams from
// templates, chunks payloads across the negotiated PDU size, dispatches
// them through a sender, and validates/materializes responses. The engine
// owns the transport exclusively; callers own the DataItem buffers they
// pass in.
type Client struct {
	mu      sync.Mutex
	t       sender
	metrics *Metrics
}

// Connect dials, performs the COTP handshake and PDU negotiation, and
// returns a ready Client.
func Connect(opts TransportOptions) (*Client, error) {
	tr := NewTransport(opts)
	if err := tr.Dial(); err != nil {
		return nil, err
	}
	return NewClient(tr), nil
}

// NewClient wraps an already-negotiated sender (a *Transport, or a mock in
// tests) in a Client.
func NewClient(t sender) *Client {
	return &Client{t: t, metrics: newMetrics()}
}

// Close releases the underlying transport, if it is closeable.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if closer, ok := c.t.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// PDULength returns the negotiated PDU size.
func (c *Client) PDULength() uint16 { return c.t.PDULength() }

// Metrics returns the Client's Prometheus collector.
func (c *Client) Metrics() *Metrics { return c.metrics }

func (c *Client) send(req []byte) ([]byte, error) {
	resp, err := c.t.Send(req)
	c.metrics.recordSend(len(req), len(resp), err)
	if err != nil {
		debugf("s7: send failed: %v (request %s)", err, fmtBytes(req))
	}
	return resp, err
}

// ---- single-item read/write (§4.2, §4.3) ----

func normalizeWordLength(area Area, wl WordLength) WordLength {
	switch area {
	case AreaCounter:
		return WLCounter
	case AreaTimer:
		return WLTimer
	default:
		return wl
	}
}

// read implements the single-item chunked read algorithm.
func (c *Client) read(area Area, wordLength WordLength, dbNumber uint16, start, amount int, buffer []byte) error {
	wordLength = normalizeWordLength(area, wordLength)
	bytesPerWord := dataSizeByte(wordLength)
	if bytesPerWord == 0 {
		return &Error{Kind: KindInvalidDataSize, Message: "unknown word length " + wordLength.String()}
	}
	if wordLength == WLBit {
		amount = 1
	} else if wordLength != WLCounter && wordLength != WLTimer {
		amount = amount * bytesPerWord
		bytesPerWord = 1
		wordLength = WLByte
	}
	pdu := c.t.PDULength()
	if pdu == 0 {
		return &Error{Kind: KindPduLength, Message: "transport not negotiated"}
	}
	maxElements := (int(pdu) - readReplyHeaderSize) / bytesPerWord
	if maxElements <= 0 {
		return &Error{Kind: KindPduLength, Message: "negotiated PDU too small for word length"}
	}

	offset := 0
	remaining := amount
	for remaining > 0 {
		num := min(remaining, maxElements)

		req := readWriteTemplate
		reqSlice := req[:readRequestSize]
		reqSlice[rwOffsetWordLength] = byte(wordLength)

		var addr uint32
		if wordLength == WLBit || wordLength == WLCounter || wordLength == WLTimer {
			addr = uint32(start)
		} else {
			addr = uint32(start) << 3
		}
		put24BitAddress(reqSlice, rwOffsetAddress, addr)
		putBEUint16(reqSlice, rwOffsetDBNumber, dbNumber)
		reqSlice[rwOffsetArea] = byte(area)
		putBEUint16(reqSlice, rwOffsetNumElements, uint16(num))

		resp, err := c.send(reqSlice)
		if err != nil {
			return err
		}
		if len(resp) < 25 {
			return &Error{Kind: KindInvalidDataSize, Message: "read response too short", Bytes: resp}
		}
		if resp[21] != 0xFF {
			return newCpuError(resp[21])
		}

		n := num * bytesPerWord
		if offset+n > len(buffer) {
			return &Error{Kind: KindInvalidInput, Message: "caller buffer too small"}
		}
		copy(buffer[offset:offset+n], resp[25:25+n])

		offset += n
		start += n
		remaining -= num
	}
	return nil
}

// write implements the single-item chunked write algorithm.
func (c *Client) write(area Area, wordLength WordLength, dbNumber uint16, start, amount int, buffer []byte) error {
	wordLength = normalizeWordLength(area, wordLength)
	bytesPerWord := dataSizeByte(wordLength)
	if bytesPerWord == 0 {
		return &Error{Kind: KindInvalidDataSize, Message: "unknown word length " + wordLength.String()}
	}
	if wordLength == WLBit {
		amount = 1
	} else if wordLength != WLCounter && wordLength != WLTimer {
		amount = amount * bytesPerWord
		bytesPerWord = 1
		wordLength = WLByte
	}
	pdu := c.t.PDULength()
	if pdu == 0 {
		return &Error{Kind: KindPduLength, Message: "transport not negotiated"}
	}
	maxElements := (int(pdu) - writeHeaderOverhead) / bytesPerWord
	if maxElements <= 0 {
		return &Error{Kind: KindPduLength, Message: "negotiated PDU too small for word length"}
	}

	offset := 0
	remaining := amount
	for remaining > 0 {
		num := min(remaining, maxElements)
		dataSize := num * bytesPerWord
		if offset+dataSize > len(buffer) {
			return &Error{Kind: KindInvalidInput, Message: "caller buffer too small"}
		}

		req := make([]byte, writeTemplateSize+dataSize)
		copy(req, readWriteTemplate[:])
		req[rwOffsetFunction] = funcWrite
		putBEUint16(req, rwOffsetTotalLen, uint16(writeTemplateSize+dataSize))
		putBEUint16(req, rwOffsetDataLen, uint16(dataSize+4))
		req[rwOffsetWordLength] = byte(wordLength)

		var addr uint32
		var bitLen uint16
		if wordLength == WLBit || wordLength == WLCounter || wordLength == WLTimer {
			addr = uint32(start)
			bitLen = uint16(dataSize)
		} else {
			addr = uint32(start) << 3
			bitLen = uint16(dataSize << 3)
		}
		put24BitAddress(req, rwOffsetAddress, addr)
		putBEUint16(req, rwOffsetDBNumber, dbNumber)
		req[rwOffsetArea] = byte(area)

		var ts TransportSize
		switch {
		case wordLength == WLBit:
			ts = TSBit
		case wordLength == WLCounter || wordLength == WLTimer:
			ts = TSOctet
		default:
			ts = TSByte
		}
		req[rwOffsetTS] = byte(ts)
		putBEUint16(req, rwOffsetDataBitLen, bitLen)
		copy(req[writeTemplateSize:], buffer[offset:offset+dataSize])

		resp, err := c.send(req)
		if err != nil {
			return err
		}
		if len(resp) != 22 {
			return &Error{Kind: KindInvalidPdu, Message: "write response length mismatch", Bytes: resp}
		}
		if resp[21] != 0xFF {
			return newCpuError(resp[21])
		}

		offset += dataSize
		start += dataSize
		remaining -= num
	}
	return nil
}

// ---- area-specific convenience wrappers ----

// AGRead reads bytes from a data block.
func (c *Client) AGRead(dbNumber uint16, start, amount int, buffer []byte) error {
	return c.read(AreaDataBlock, WLByte, dbNumber, start, amount, buffer)
}

// AGWrite writes bytes to a data block.
func (c *Client) AGWrite(dbNumber uint16, start, amount int, buffer []byte) error {
	return c.write(AreaDataBlock, WLByte, dbNumber, start, amount, buffer)
}

// MBRead reads bytes from flag (Merker) memory.
func (c *Client) MBRead(start, amount int, buffer []byte) error {
	return c.read(AreaMerker, WLByte, 0, start, amount, buffer)
}

// MBWrite writes bytes to flag (Merker) memory.
func (c *Client) MBWrite(start, amount int, buffer []byte) error {
	return c.write(AreaMerker, WLByte, 0, start, amount, buffer)
}

// EBRead reads bytes from the process-input image.
func (c *Client) EBRead(start, amount int, buffer []byte) error {
	return c.read(AreaProcessInput, WLByte, 0, start, amount, buffer)
}

// EBWrite writes bytes to the process-input image.
func (c *Client) EBWrite(start, amount int, buffer []byte) error {
	return c.write(AreaProcessInput, WLByte, 0, start, amount, buffer)
}

// ABRead reads bytes from the process-output image.
func (c *Client) ABRead(start, amount int, buffer []byte) error {
	return c.read(AreaProcessOutput, WLByte, 0, start, amount, buffer)
}

// ABWrite writes bytes to the process-output image.
func (c *Client) ABWrite(start, amount int, buffer []byte) error {
	return c.write(AreaProcessOutput, WLByte, 0, start, amount, buffer)
}

// ---- batched multi-item read/write (§4.4, §4.5) ----

func addressFor(wl WordLength, start int) uint32 {
	if wl == WLBit || wl == WLCounter || wl == WLTimer {
		return uint32(start)
	}
	return uint32(start) << 3
}

// ReadMultiVars reads up to 20 items in a single round-trip. Each item's
// Buffer is populated on success; a per-item failure is recorded on
// item.Err without failing the whole call, unless a global/structural
// error occurs.
func (c *Client) ReadMultiVars(items []*DataItem) error {
	n := len(items)
	if n == 0 {
		return nil
	}
	if n > multiMaxVars {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("%d items exceeds max of %d", n, multiMaxVars)}
	}

	total := multiHeaderSize + n*multiItemSize
	req := make([]byte, total)
	copy(req, mrdHeaderTemplate[:])
	putBEUint16(req, rwOffsetTotalLen, uint16(total))
	putBEUint16(req, multiOffsetParam, uint16(n*multiItemSize+2))
	req[multiOffsetCount] = byte(n)

	for i, item := range items {
		off := multiHeaderSize + i*multiItemSize
		copy(req[off:off+multiItemSize], mrdItemTemplate[:])
		req[off+itemOffsetWordLength] = byte(item.WordLength)
		putBEUint16(req, off+itemOffsetSize, uint16(item.Size))
		putBEUint16(req, off+itemOffsetDBNumber, item.DBNumber)
		req[off+itemOffsetArea] = byte(item.Area)
		put24BitAddress(req, off+itemOffsetAddress, addressFor(item.WordLength, item.Start))
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	if len(resp) < multiRespMinLen {
		return newInvalidResponse("multi-read response too short", resp)
	}
	if ge := beUint16(resp, multiRespOffsetGlobalError); ge != 0 {
		return newCpuError(byte(ge))
	}
	count := int(resp[multiRespOffsetCount])
	if count != n || count > multiMaxVars {
		return newInvalidResponse("multi-read item count mismatch", resp)
	}

	offset := multiRespItemsStart
	for _, item := range items {
		if offset >= len(resp) {
			return newInvalidResponse("multi-read response truncated", resp)
		}
		code := resp[offset]
		if code == 0xFF {
			if offset+4 > len(resp) {
				return newInvalidResponse("multi-read item header truncated", resp)
			}
			ts := TransportSize(resp[offset+1])
			length := int(beUint16(resp, offset+2))
			if ts != TSOctet && ts != TSReal && ts != TSBit {
				length /= 8
			}
			if offset+4+length > len(resp) {
				return newInvalidResponse("multi-read item payload truncated", resp)
			}
			copyLen := length
			if copyLen > len(item.Buffer) {
				copyLen = len(item.Buffer)
			}
			copy(item.Buffer, resp[offset+4:offset+4+copyLen])
			item.Err = nil
			adv := length
			if adv%2 != 0 {
				adv++
			}
			offset += 4 + adv
		} else {
			item.Err = newCpuError(code)
			offset += 4
		}
	}
	return nil
}

// WriteMultiVars writes up to 20 items in a single round-trip. Per-item
// outcomes are recorded on item.Err the same way ReadMultiVars does.
//
// NOTE: the parameter records below intentionally do not shift Start left
// by 3, unlike ReadMultiVars and the single-item path. This asymmetry is
// preserved from the source this engine is modeled on; see DESIGN.md.
func (c *Client) WriteMultiVars(items []*DataItem) error {
	n := len(items)
	if n == 0 {
		return nil
	}
	if n > multiMaxVars {
		return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("%d items exceeds max of %d", n, multiMaxVars)}
	}

	dataRecords := make([][]byte, n)
	for i, item := range items {
		var ts TransportSize
		switch {
		case item.WordLength == WLBit:
			ts = TSBit
		case item.WordLength == WLCounter || item.WordLength == WLTimer:
			ts = TSOctet
		default:
			ts = TSByte
		}
		itemDataSize := item.Size
		if item.WordLength == WLCounter || item.WordLength == WLTimer {
			itemDataSize = item.Size * 2
		}
		var lengthField uint16
		if ts != TSOctet && ts != TSBit {
			lengthField = uint16(itemDataSize * 8)
		} else {
			lengthField = uint16(itemDataSize)
		}

		rec := make([]byte, 4, 4+itemDataSize+1)
		rec[1] = byte(ts)
		putBEUint16(rec, 2, lengthField)
		if itemDataSize > len(item.Buffer) {
			return &Error{Kind: KindInvalidInput, Message: "item buffer smaller than declared size"}
		}
		rec = append(rec, item.Buffer[:itemDataSize]...)
		if itemDataSize%2 != 0 {
			rec = append(rec, 0)
		}
		dataRecords[i] = rec
	}

	dataTotal := 0
	for _, r := range dataRecords {
		dataTotal += len(r)
	}
	paramsEnd := multiHeaderSize + n*multiItemSize
	total := paramsEnd + dataTotal

	req := make([]byte, total)
	copy(req, mwrHeaderTemplate[:])
	putBEUint16(req, rwOffsetTotalLen, uint16(total))
	putBEUint16(req, multiOffsetParam, uint16(n*multiItemSize+2))
	req[multiOffsetCount] = byte(n)

	for i, item := range items {
		off := multiHeaderSize + i*multiItemSize
		copy(req[off:off+multiItemSize], mwrItemTemplate[:])
		req[off+itemOffsetWordLength] = byte(item.WordLength)
		putBEUint16(req, off+itemOffsetSize, uint16(item.Size))
		putBEUint16(req, off+itemOffsetDBNumber, item.DBNumber)
		req[off+itemOffsetArea] = byte(item.Area)
		put24BitAddress(req, off+itemOffsetAddress, uint32(item.Start))
	}

	pos := paramsEnd
	for _, r := range dataRecords {
		copy(req[pos:], r)
		pos += len(r)
	}

	if pdu := c.t.PDULength(); pdu > 0 && total > int(pdu) {
		return &Error{Kind: KindPduLength, Message: "write_multi_vars telegram exceeds negotiated PDU"}
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	if len(resp) < multiRespMinLen {
		return newInvalidResponse("multi-write response too short", resp)
	}
	if ge := beUint16(resp, multiRespOffsetGlobalError); ge != 0 {
		return newCpuError(byte(ge))
	}
	count := int(resp[multiRespOffsetCount])
	if count != n || count > multiMaxVars {
		return newInvalidResponse("multi-write item count mismatch", resp)
	}

	offset := multiRespItemsStart
	for _, item := range items {
		if offset >= len(resp) {
			return newInvalidResponse("multi-write response truncated", resp)
		}
		if resp[offset] != 0xFF {
			item.Err = newCpuError(resp[offset])
		} else {
			item.Err = nil
		}
		offset++
	}
	return nil
}

// ---- CPU control state machine (§4.6) ----

func (c *Client) controlCommand(template []byte, expectedCode byte, cannotKind ErrorKind) error {
	buf := make([]byte, len(template))
	copy(buf, template)
	resp, err := c.send(buf)
	if err != nil {
		return err
	}
	if len(resp) < controlMinRespLen {
		return &Error{Kind: KindInvalidPdu, Message: "control response too short", Bytes: resp}
	}
	switch resp[controlRespOffsetAlready] {
	case pduAlreadyStarted:
		return &Error{Kind: KindAlreadyRun}
	case pduAlreadyStopped:
		return &Error{Kind: KindAlreadyStop}
	}
	if resp[controlRespOffsetCode] != expectedCode {
		return &Error{Kind: cannotKind, Message: "unexpected control response code", Bytes: resp}
	}
	return nil
}

// Start performs a cold start.
func (c *Client) Start() error {
	return c.controlCommand(coldStartTelegram[:], pduStart, KindCannotStart)
}

// Restart performs a warm start.
func (c *Client) Restart() error {
	return c.controlCommand(warmStartTelegram[:], pduStart, KindCannotStart)
}

// Stop halts CPU execution.
func (c *Client) Stop() error {
	return c.controlCommand(stopTelegram[:], pduStop, KindCannotStop)
}

// ---- CPU introspection (§4.7) ----

// PlcStatus returns the CPU's current run state.
func (c *Client) PlcStatus() (CpuStatus, error) {
	resp, err := c.send(plcStatusTelegram[:])
	if err != nil {
		return 0, err
	}
	if len(resp) < plcStatusMinRespLen {
		return 0, &Error{Kind: KindInvalidPdu, Message: "plc status response too short", Bytes: resp}
	}
	if ge := beUint16(resp, plcStatusOffsetError); ge != 0 {
		return 0, newCpuError(byte(ge))
	}
	return cpuStatusFromByte(resp[plcStatusOffsetStatus])
}

// CpuInfo returns the CPU identity record (SZL 0x001C/0).
func (c *Client) CpuInfo() (*CpuInfo, error) {
	s, err := c.readSZL(szlIDCpuIdentification, 0)
	if err != nil {
		return nil, err
	}
	if len(s.Data) < cpuInfoMinDataLen {
		return nil, newInvalidResponse("cpu info szl data too short", s.Data)
	}
	return &CpuInfo{
		ModuleTypeName: asciiField(s.Data[172:204]),
		SerialNumber:   asciiField(s.Data[138:162]),
		ASName:         asciiField(s.Data[2:26]),
		Copyright:      asciiField(s.Data[104:130]),
		ModuleName:     asciiField(s.Data[36:60]),
	}, nil
}

// CpInfo returns the communications-processor parameters (SZL 0x0131/0).
func (c *Client) CpInfo() (*CpInfo, error) {
	s, err := c.readSZL(szlIDCommParameters, 0)
	if err != nil {
		return nil, err
	}
	if len(s.Data) < cpInfoMinDataLen {
		return nil, newInvalidResponse("cp info szl data too short", s.Data)
	}
	return &CpInfo{
		MaxPduLength:   beUint16(s.Data, 2),
		MaxConnections: beUint16(s.Data, 4),
		MaxMpiRate:     beUint16(s.Data, 6),
		MaxBusRate:     beUint16(s.Data, 10),
	}, nil
}

// ---- SZL multi-part read (§4.8) ----

func (c *Client) readSZL(id, index uint16) (*szl, error) {
	req := szlFirstTelegram
	putBEUint16(req[:], szlOffsetSeqOut, 1)
	putBEUint16(req[:], szlOffsetID, id)
	putBEUint16(req[:], szlOffsetIndex, index)

	resp, err := c.send(req[:])
	if err != nil {
		return nil, err
	}
	if len(resp) < szlMinFirstRespLen {
		return nil, newInvalidResponse("szl first response too short", resp)
	}
	if ge := beUint16(resp, szlRespOffsetError); ge != 0 || resp[szlRespOffsetOK] != 0xFF {
		return nil, &Error{Kind: KindInvalidPlcAnswer, Message: "szl first response rejected", Bytes: resp}
	}

	dataSize := int(beUint16(resp, szlRespDataSizeOff)) - 8
	if dataSize < 0 || szlRespDataStart+dataSize > len(resp) {
		return nil, newInvalidResponse("szl first response data size invalid", resp)
	}

	result := &szl{Header: szlHeader{
		LengthHeader:       beUint16(resp, szlRespOffsetHeader) * 2,
		NumberOfDataRecord: beUint16(resp, szlRespOffsetHeader+2),
	}}
	result.Data = append(result.Data, resp[szlRespDataStart:szlRespDataStart+dataSize]...)

	done := resp[szlRespOffsetDone] == 0
	seqIn := resp[szlRespOffsetSeqIn]

	for !done {
		nextReq := szlNextTelegram
		nextReq[szlOffsetSeqEcho] = seqIn
		putBEUint16(nextReq[:], szlOffsetIndex, index)

		resp, err = c.send(nextReq[:])
		if err != nil {
			return nil, err
		}
		if len(resp) < szlMinFirstRespLen {
			return nil, newInvalidResponse("szl next response too short", resp)
		}
		if ge := beUint16(resp, szlRespOffsetError); ge != 0 || resp[szlRespOffsetOK] != 0xFF {
			return nil, &Error{Kind: KindInvalidPlcAnswer, Message: "szl next response rejected", Bytes: resp}
		}

		partSize := int(beUint16(resp, szlRespDataSizeOff))
		if partSize < 0 || szlRespDataStart+partSize > len(resp) {
			return nil, newInvalidResponse("szl next response data size invalid", resp)
		}
		// Extend (not replace) the accumulated data, per the corrected
		// behavior documented in DESIGN.md / spec §9.
		result.Data = append(result.Data, resp[szlRespDataStart:szlRespDataStart+partSize]...)
		result.Header.LengthHeader += beUint16(resp, szlRespOffsetHeader) * 2
		result.Header.NumberOfDataRecord += beUint16(resp, szlRespOffsetHeader+2)

		done = resp[szlRespOffsetDone] == 0
		seqIn = resp[szlRespOffsetSeqIn]
	}
	return result, nil
}

// ---- block catalog (§4.9) ----

// GetAgBlockInfo fetches metadata for a single block.
func (c *Client) GetAgBlockInfo(blockType BlockType, number uint32) (*BlockInfo, error) {
	req := blockInfoTelegram
	req[blockInfoOffsetType] = byte(blockType)
	digits := blockNumberASCII(number)
	copy(req[blockInfoOffsetNumber:blockInfoOffsetNumber+5], digits[:])

	resp, err := c.send(req[:])
	if err != nil {
		return nil, err
	}
	if len(resp) < blockInfoRespOffsetVer+1 {
		return nil, newInvalidResponse("block info response too short", resp)
	}
	if ge := beUint16(resp, blockInfoRespOffsetError); ge != 0 {
		return nil, newCpuError(byte(ge))
	}
	subType, err := subBlockTypeFromByte(resp[blockInfoRespOffsetSub])
	if err != nil {
		return nil, err
	}
	lang, err := blockLangFromByte(resp[blockInfoRespOffsetLang])
	if err != nil {
		return nil, err
	}
	return &BlockInfo{
		SubType:       subType,
		Number:        beUint16(resp, blockInfoRespOffsetNumber),
		Lang:          lang,
		Flags:         resp[blockInfoRespOffsetFlags],
		MC7Size:       beUint16(resp, blockInfoRespOffsetMC7),
		LoadSize:      beInt32(resp, blockInfoRespOffsetLoad),
		LocalData:     beUint16(resp, blockInfoRespOffsetLocal),
		SBBLength:     beUint16(resp, blockInfoRespOffsetSBB),
		Version:       resp[blockInfoRespOffsetVer],
		CodeDate:      decodeSiemensDate(beUint16(resp, blockInfoRespOffsetCode)),
		InterfaceDate: decodeSiemensDate(beUint16(resp, blockInfoRespOffsetIface)),
		Author:        asciiField(resp[blockInfoRespOffsetAuthor : blockInfoRespOffsetAuthor+8]),
		Family:        asciiField(resp[blockInfoRespOffsetFamily : blockInfoRespOffsetFamily+8]),
		Header:        asciiField(resp[blockInfoRespOffsetHeader : blockInfoRespOffsetHeader+8]),
	}, nil
}

// BlockCounts is the decoded response of GetAgBlockList: the number of
// blocks of each catalog type currently loaded on the CPU.
type BlockCounts struct {
	OB, FB, FC, DB, SDB, SFC, SFB uint16
}

// GetAgBlockList fetches the block-type population counts.
func (c *Client) GetAgBlockList() (*BlockCounts, error) {
	resp, err := c.send(blockListTelegram[:])
	if err != nil {
		return nil, err
	}
	if len(resp) < blockListMinRespLen {
		return nil, newInvalidResponse("block list response too short", resp)
	}
	if resp[blockListRespOffsetOK] != 0xFF {
		return nil, &Error{Kind: KindInvalidPlcAnswer, Message: "block list response not ok", Bytes: resp}
	}
	if ge := beUint16(resp, blockListRespOffsetError); ge != 0 {
		return nil, newCpuError(byte(ge))
	}
	return &BlockCounts{
		OB:  beUint16(resp, blockListRespOffsetOB),
		FB:  beUint16(resp, blockListRespOffsetFB),
		FC:  beUint16(resp, blockListRespOffsetFC),
		DB:  beUint16(resp, blockListRespOffsetDB),
		SDB: beUint16(resp, blockListRespOffsetSDB),
		SFC: beUint16(resp, blockListRespOffsetSFC),
		SFB: beUint16(resp, blockListRespOffsetSFB),
	}, nil
}

// ---- convenience composites (§4.10) ----

// ReadFullDb reads the entirety of a data block's current content into
// buffer, first querying its compiled size via GetAgBlockInfo.
func (c *Client) ReadFullDb(dbNumber uint16, buffer []byte) error {
	info, err := c.GetAgBlockInfo(BlockTypeDB, uint32(dbNumber))
	if err != nil {
		return err
	}
	if len(buffer) < int(info.MC7Size) {
		return &Error{Kind: KindBufferTooSmall, Message: fmt.Sprintf("buffer too small for DB %d (need %d, have %d)", dbNumber, info.MC7Size, len(buffer))}
	}
	return c.AGRead(dbNumber, 0, int(info.MC7Size), buffer)
}
