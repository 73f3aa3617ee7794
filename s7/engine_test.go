package s7

import (
	"testing"
)

// mockSender is a scripted sender: each call to Send pops the next queued
// response (or error) regardless of request content, and records the
// request bytes it was given for later assertions.
type mockSender struct {
	pdu       uint16
	responses [][]byte
	errs      []error
	requests  [][]byte
	call      int
}

func (m *mockSender) Send(req []byte) ([]byte, error) {
	reqCopy := make([]byte, len(req))
	copy(reqCopy, req)
	m.requests = append(m.requests, reqCopy)

	i := m.call
	m.call++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i >= len(m.responses) {
		return nil, &Error{Kind: KindIO, Message: "mock exhausted"}
	}
	return m.responses[i], nil
}

func (m *mockSender) PDULength() uint16 { return m.pdu }

func readResponse(payload []byte) []byte {
	resp := make([]byte, 25+len(payload))
	resp[0], resp[1], resp[2], resp[3] = 3, 0, byte(len(resp)>>8), byte(len(resp))
	resp[21] = 0xFF
	copy(resp[25:], payload)
	return resp
}

func writeResponse() []byte {
	resp := make([]byte, 22)
	resp[21] = 0xFF
	return resp
}

func TestAGReadSingleChunk(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	m := &mockSender{pdu: 480, responses: [][]byte{readResponse(payload)}}
	c := NewClient(m)

	buf := make([]byte, 4)
	if err := c.AGRead(1, 0, 4, buf); err != nil {
		t.Fatalf("AGRead: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatalf("got %v, want %v", buf, payload)
	}
	req := m.requests[0]
	if req[rwOffsetArea] != byte(AreaDataBlock) {
		t.Fatalf("area byte = 0x%02X, want DataBlock", req[rwOffsetArea])
	}
	if req[rwOffsetFunction] != funcRead {
		t.Fatalf("function byte = 0x%02X, want read", req[rwOffsetFunction])
	}
}

func TestAGReadChunksAcrossPDU(t *testing.T) {
	// Force a tiny PDU so a 10-byte read must split into multiple round trips.
	m := &mockSender{
		pdu: 20,
		responses: [][]byte{
			readResponse([]byte{1, 2}),
			readResponse([]byte{3, 4}),
			readResponse([]byte{5, 6}),
			readResponse([]byte{7, 8}),
			readResponse([]byte{9, 10}),
		},
	}
	c := NewClient(m)
	buf := make([]byte, 10)
	if err := c.AGRead(1, 0, 10, buf); err != nil {
		t.Fatalf("AGRead: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (buf=%v)", i, buf[i], want[i], buf)
		}
	}
	if len(m.requests) != 5 {
		t.Fatalf("expected 5 chunked requests, got %d", len(m.requests))
	}
}

func TestAGReadCpuError(t *testing.T) {
	resp := readResponse(nil)
	resp[21] = 0x05 // address error
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)

	err := c.AGRead(1, 0, 1, make([]byte, 1))
	s7err, ok := err.(*Error)
	if !ok || s7err.Kind != KindCpu || s7err.Code != 0x05 {
		t.Fatalf("expected Cpu(0x05) error, got %v", err)
	}
}

func TestAGWrite(t *testing.T) {
	m := &mockSender{pdu: 480, responses: [][]byte{writeResponse()}}
	c := NewClient(m)

	if err := c.AGWrite(1, 0, 2, []byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("AGWrite: %v", err)
	}
	req := m.requests[0]
	if req[rwOffsetFunction] != funcWrite {
		t.Fatalf("function byte = 0x%02X, want write", req[rwOffsetFunction])
	}
	if req[writeTemplateSize] != 0xAA || req[writeTemplateSize+1] != 0xBB {
		t.Fatalf("payload not appended correctly: %v", req[writeTemplateSize:])
	}
}

func buildMultiReadResponse(items [][]byte, errCodes []byte) []byte {
	body := []byte{}
	for i, data := range items {
		if errCodes[i] != 0xFF {
			body = append(body, errCodes[i], 0, 0, 0)
			continue
		}
		item := make([]byte, 4+len(data))
		item[0] = 0xFF
		item[1] = byte(TSByte)
		putBEUint16(item, 2, uint16(len(data)*8))
		copy(item[4:], data)
		if len(data)%2 != 0 {
			item = append(item, 0)
		}
		body = append(body, item...)
	}
	resp := make([]byte, multiRespItemsStart+len(body))
	resp[multiRespOffsetCount] = byte(len(items))
	copy(resp[multiRespItemsStart:], body)
	return resp
}

func TestReadMultiVars(t *testing.T) {
	resp := buildMultiReadResponse([][]byte{{0x11, 0x22}, nil}, []byte{0xFF, 0x0A})
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)

	buf1 := make([]byte, 2)
	buf2 := make([]byte, 2)
	items := []*DataItem{
		{Area: AreaDataBlock, WordLength: WLByte, DBNumber: 1, Start: 0, Size: 2, Buffer: buf1},
		{Area: AreaDataBlock, WordLength: WLByte, DBNumber: 2, Start: 0, Size: 2, Buffer: buf2},
	}
	if err := c.ReadMultiVars(items); err != nil {
		t.Fatalf("ReadMultiVars: %v", err)
	}
	if buf1[0] != 0x11 || buf1[1] != 0x22 {
		t.Fatalf("item 0 buffer = %v", buf1)
	}
	if items[0].Err != nil {
		t.Fatalf("item 0 err = %v, want nil", items[0].Err)
	}
	s7err, ok := items[1].Err.(*Error)
	if !ok || s7err.Kind != KindCpu || s7err.Code != 0x0A {
		t.Fatalf("item 1 err = %v, want Cpu(0x0A)", items[1].Err)
	}
}

func TestReadMultiVarsTooManyItems(t *testing.T) {
	m := &mockSender{pdu: 480}
	c := NewClient(m)
	items := make([]*DataItem, multiMaxVars+1)
	for i := range items {
		items[i] = &DataItem{Buffer: make([]byte, 1), Size: 1}
	}
	err := c.ReadMultiVars(items)
	s7err, ok := err.(*Error)
	if !ok || s7err.Kind != KindInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func buildMultiWriteResponse(codes []byte) []byte {
	resp := make([]byte, multiRespItemsStart+len(codes))
	resp[multiRespOffsetCount] = byte(len(codes))
	copy(resp[multiRespItemsStart:], codes)
	return resp
}

func TestWriteMultiVars(t *testing.T) {
	resp := buildMultiWriteResponse([]byte{0xFF, 0xFF})
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)

	items := []*DataItem{
		{Area: AreaDataBlock, WordLength: WLByte, DBNumber: 1, Start: 0, Size: 2, Buffer: []byte{1, 2}},
		{Area: AreaMerker, WordLength: WLByte, Start: 4, Size: 1, Buffer: []byte{9}},
	}
	if err := c.WriteMultiVars(items); err != nil {
		t.Fatalf("WriteMultiVars: %v", err)
	}
	req := m.requests[0]
	// Per the preserved source asymmetry, multi-write addresses are NOT
	// shifted left by 3, unlike every other addressing path.
	off := multiHeaderSize + itemOffsetAddress
	if req[off] != 0 || req[off+1] != 0 || req[off+2] != 0 {
		t.Fatalf("expected unshifted zero address for item 0, got % X", req[off:off+3])
	}
	off2 := multiHeaderSize + multiItemSize + itemOffsetAddress
	if req[off2+2] != 4 {
		t.Fatalf("expected unshifted address byte 4, got %d", req[off2+2])
	}
}

func buildControlResponse(code byte) []byte {
	resp := make([]byte, controlMinRespLen+1)
	resp[controlRespOffsetCode] = code
	return resp
}

func TestStartStop(t *testing.T) {
	m := &mockSender{pdu: 480, responses: [][]byte{buildControlResponse(pduStart), buildControlResponse(pduStop)}}
	c := NewClient(m)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStartAlreadyRunning(t *testing.T) {
	resp := buildControlResponse(pduStart)
	resp[controlRespOffsetAlready] = pduAlreadyStarted
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)
	err := c.Start()
	s7err, ok := err.(*Error)
	if !ok || s7err.Kind != KindAlreadyRun {
		t.Fatalf("expected AlreadyRun, got %v", err)
	}
}

func TestStopAlreadyStopped(t *testing.T) {
	resp := buildControlResponse(pduStop)
	resp[controlRespOffsetAlready] = pduAlreadyStopped
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)
	err := c.Stop()
	s7err, ok := err.(*Error)
	if !ok || s7err.Kind != KindAlreadyStop {
		t.Fatalf("expected AlreadyStop, got %v", err)
	}
}

func TestPlcStatus(t *testing.T) {
	resp := make([]byte, plcStatusMinRespLen)
	resp[plcStatusOffsetStatus] = byte(CpuRun)
	m := &mockSender{pdu: 480, responses: [][]byte{resp}}
	c := NewClient(m)

	status, err := c.PlcStatus()
	if err != nil {
		t.Fatalf("PlcStatus: %v", err)
	}
	if status != CpuRun {
		t.Fatalf("status = %v, want Run", status)
	}
}

func buildBlockInfoResponse() []byte {
	resp := make([]byte, blockInfoRespOffsetVer+1)
	resp[blockInfoRespOffsetFlags] = 1
	resp[blockInfoRespOffsetLang] = byte(BlockLangSCL)
	resp[blockInfoRespOffsetSub] = byte(SubBlockDB)
	putBEUint16(resp, blockInfoRespOffsetNumber, 42)
	putBEUint16(resp, blockInfoRespOffsetMC7, 100)
	copy(resp[blockInfoRespOffsetAuthor:], "AUTHOR  ")
	copy(resp[blockInfoRespOffsetFamily:], "FAMILY  ")
	copy(resp[blockInfoRespOffsetHeader:], "HEADER  ")
	return resp
}

func TestGetAgBlockInfo(t *testing.T) {
	m := &mockSender{pdu: 480, responses: [][]byte{buildBlockInfoResponse()}}
	c := NewClient(m)

	info, err := c.GetAgBlockInfo(BlockTypeDB, 42)
	if err != nil {
		t.Fatalf("GetAgBlockInfo: %v", err)
	}
	if info.SubType != SubBlockDB || info.Number != 42 || info.MC7Size != 100 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Author != "AUTHOR" {
		t.Fatalf("author = %q, want %q", info.Author, "AUTHOR")
	}
	req := m.requests[0]
	if string(req[blockInfoOffsetNumber:blockInfoOffsetNumber+5]) != "00042" {
		t.Fatalf("block number ASCII encoding = %q, want %q", req[blockInfoOffsetNumber:blockInfoOffsetNumber+5], "00042")
	}
}

func buildBlockListResponse(ob, fb, fc, db, sdb, sfc, sfb uint16) []byte {
	resp := make([]byte, blockListMinRespLen)
	resp[blockListRespOffsetOK] = 0xFF
	putBEUint16(resp, blockListRespOffsetOB, ob)
	putBEUint16(resp, blockListRespOffsetFB, fb)
	putBEUint16(resp, blockListRespOffsetFC, fc)
	putBEUint16(resp, blockListRespOffsetDB, db)
	putBEUint16(resp, blockListRespOffsetSDB, sdb)
	putBEUint16(resp, blockListRespOffsetSFC, sfc)
	putBEUint16(resp, blockListRespOffsetSFB, sfb)
	return resp
}

func TestGetAgBlockList(t *testing.T) {
	m := &mockSender{pdu: 480, responses: [][]byte{buildBlockListResponse(1, 2, 3, 4, 5, 6, 7)}}
	c := NewClient(m)

	counts, err := c.GetAgBlockList()
	if err != nil {
		t.Fatalf("GetAgBlockList: %v", err)
	}
	want := BlockCounts{OB: 1, FB: 2, FC: 3, DB: 4, SDB: 5, SFC: 6, SFB: 7}
	if *counts != want {
		t.Fatalf("counts = %+v, want %+v", *counts, want)
	}
}

func buildSZLFirstResponse(data []byte, done bool) []byte {
	resp := make([]byte, szlRespDataStart+len(data))
	resp[szlRespOffsetOK] = 0xFF
	doneByte := byte(0)
	if !done {
		doneByte = 1
	}
	resp[szlRespOffsetDone] = doneByte
	resp[szlRespOffsetSeqIn] = 1
	putBEUint16(resp, szlRespDataSizeOff, uint16(len(data)+8))
	putBEUint16(resp, szlRespOffsetHeader, 1)
	putBEUint16(resp, szlRespOffsetHeader+2, 1)
	copy(resp[szlRespDataStart:], data)
	return resp
}

func buildSZLNextResponse(data []byte) []byte {
	resp := make([]byte, szlRespDataStart+len(data))
	resp[szlRespOffsetOK] = 0xFF
	resp[szlRespOffsetDone] = 0
	putBEUint16(resp, szlRespDataSizeOff, uint16(len(data)))
	putBEUint16(resp, szlRespOffsetHeader, 1)
	putBEUint16(resp, szlRespOffsetHeader+2, 1)
	copy(resp[szlRespDataStart:], data)
	return resp
}

func TestReadSZLMultiPartExtends(t *testing.T) {
	part1 := make([]byte, 210)
	part1[0] = 0xAA
	part2 := make([]byte, 10)
	part2[0] = 0xBB

	m := &mockSender{pdu: 480, responses: [][]byte{
		buildSZLFirstResponse(part1, false),
		buildSZLNextResponse(part2),
	}}
	c := NewClient(m)

	s, err := c.readSZL(szlIDCpuIdentification, 0)
	if err != nil {
		t.Fatalf("readSZL: %v", err)
	}
	wantLen := len(part1) + len(part2)
	if len(s.Data) != wantLen {
		t.Fatalf("accumulated data length = %d, want %d", len(s.Data), wantLen)
	}
	if s.Data[0] != 0xAA || s.Data[len(part1)] != 0xBB {
		t.Fatalf("accumulated data did not extend correctly: %v", s.Data[:5])
	}
}

func TestReadFullDbUsesBlockInfoSize(t *testing.T) {
	info := buildBlockInfoResponse() // MC7Size = 100
	read := readResponse(make([]byte, 100))
	m := &mockSender{pdu: 480, responses: [][]byte{info, read}}
	c := NewClient(m)

	buf := make([]byte, 100)
	if err := c.ReadFullDb(42, buf); err != nil {
		t.Fatalf("ReadFullDb: %v", err)
	}
}

func TestReadFullDbBufferTooSmall(t *testing.T) {
	info := buildBlockInfoResponse() // MC7Size = 100
	m := &mockSender{pdu: 480, responses: [][]byte{info}}
	c := NewClient(m)

	err := c.ReadFullDb(42, make([]byte, 10))
	s7err, ok := err.(*Error)
	if !ok || s7err.Kind != KindBufferTooSmall {
		t.Fatalf("expected BufferTooSmall, got %v", err)
	}
}
